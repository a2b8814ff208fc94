package trigger

import (
	"context"

	rcron "github.com/robfig/cron/v3"
	"github.com/weftlabs/weft/internal/task"
)

// Cron re-activates tasks on cron schedules.
type Cron struct {
	c      *rcron.Cron
	act    Activator
	logger task.Logger
}

// NewCron creates a Cron delivering re-activations to act.
func NewCron(act Activator, logger task.Logger) *Cron {
	return &Cron{c: rcron.New(), act: act, logger: logger}
}

// Add schedules the named task's re-activation. The expression uses the
// standard five-field cron format, plus descriptors like "@hourly".
func (c *Cron) Add(taskName, expr string) error {
	_, err := c.c.AddFunc(expr, func() {
		c.logger.Info(taskName, "cron", "schedule fired")
		if err := c.act.Reactivate(context.Background(), taskName); err != nil {
			c.logger.Error(taskName, "cron", err.Error())
		}
	})
	return err
}

// Start begins firing schedules in the background.
func (c *Cron) Start() {
	c.c.Start()
}

// Stop halts scheduling and waits for in-flight jobs.
func (c *Cron) Stop() {
	<-c.c.Stop().Done()
}
