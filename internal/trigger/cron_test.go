package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCron_Add_BadExpression(t *testing.T) {
	c := NewCron(newRecordingActivator(), nopLogger{})
	assert.Error(t, c.Add("task", "not a schedule"))
	assert.Error(t, c.Add("task", "* * *"))
}

func TestCron_Add_ValidExpressions(t *testing.T) {
	c := NewCron(newRecordingActivator(), nopLogger{})
	assert.NoError(t, c.Add("hourly", "0 * * * *"))
	assert.NoError(t, c.Add("descriptor", "@hourly"))
}

func TestCron_FiresSchedule(t *testing.T) {
	act := newRecordingActivator()
	c := NewCron(act, nopLogger{})
	require.NoError(t, c.Add("tick", "@every 100ms"))

	c.Start()
	defer c.Stop()

	select {
	case name := <-act.fired:
		assert.Equal(t, "tick", name)
	case <-time.After(3 * time.Second):
		t.Fatal("schedule never fired")
	}
}
