package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/internal/stream"
)

func TestTask_Runner_Barrier(t *testing.T) {
	tk := New("barrier")
	assert.True(t, tk.IsBarrier())

	res, err := tk.Runner()(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultNone, res.Kind)
	require.NoError(t, res.Await(context.Background()))
}

func TestTask_Runner_BodyError(t *testing.T) {
	boom := errors.New("boom")
	tk := New("fail", WithBody(func(context.Context, *Task) (Result, error) {
		return NoResult(), boom
	}))

	_, err := tk.Runner()(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestTask_Runner_RunOnceSkipsAfterCompletion(t *testing.T) {
	count := 0
	tk := New("once", WithRunOnce(), WithBody(func(context.Context, *Task) (Result, error) {
		count++
		return NoResult(), nil
	}))
	run := tk.Runner()

	_, err := run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Until the activation is recorded as done the body still runs.
	_, err = run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tk.MarkDone(time.Now())

	res, err := run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultNone, res.Kind)
	assert.Equal(t, 2, count)
}

func TestTask_Runner_WithoutRunOnceRunsEveryTime(t *testing.T) {
	count := 0
	tk := New("each", WithBody(func(context.Context, *Task) (Result, error) {
		count++
		return NoResult(), nil
	}))
	run := tk.Runner()

	for i := 0; i < 3; i++ {
		_, err := run(context.Background())
		require.NoError(t, err)
		tk.MarkDone(time.Now())
	}
	assert.Equal(t, 3, count)
}

func TestTask_Runner_PrefersStreamOverBodyResult(t *testing.T) {
	files := []*stream.File{{Path: "a.txt", Data: []byte("a")}}
	tk := New("pipe", WithBody(func(_ context.Context, tsk *Task) (Result, error) {
		tsk.ReadFrom(files)
		return NoResult(), nil
	}))

	res, err := tk.Runner()(context.Background())
	require.NoError(t, err)
	require.Equal(t, ResultStream, res.Kind)
	require.NotNil(t, res.Stream)

	got, err := res.Stream.Collect()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.txt", got[0].Path)

	require.NoError(t, res.Await(context.Background()))

	// Completion releases the stream handle for the next activation.
	assert.Nil(t, tk.Stream())
}

func TestTask_Runner_ClearsStreamOnError(t *testing.T) {
	tk := New("pipe", WithBody(func(_ context.Context, tsk *Task) (Result, error) {
		tsk.ReadFrom([]*stream.File{{Path: "a.txt"}})
		tsk.Pipe(func(in <-chan *stream.File, _ chan<- *stream.File) error {
			for range in {
			}
			return errors.New("transform failed")
		})
		return NoResult(), nil
	}))

	res, err := tk.Runner()(context.Background())
	require.NoError(t, err)
	require.Equal(t, ResultStream, res.Kind)

	err = res.Await(context.Background())
	require.Error(t, err)
	assert.Nil(t, tk.Stream())
}

func TestTask_Read_LinearizesAgainstPriorStream(t *testing.T) {
	first := []*stream.File{{Path: "old.txt"}}
	second := []*stream.File{{Path: "new.txt"}}

	tk := New("retriggered")
	tk.ReadFrom(first)
	prior := tk.Stream()

	// A re-trigger attaches a new source while the previous stream is still
	// draining; the new one must not emit yet.
	tk.ReadFrom(second)
	next := tk.Stream()
	require.NotSame(t, prior, next)

	collected := make(chan []*stream.File, 1)
	go func() {
		fs, _ := next.Collect()
		collected <- fs
	}()

	select {
	case <-collected:
		t.Fatal("second stream emitted before the first completed")
	case <-time.After(50 * time.Millisecond):
	}

	// Draining the first stream releases the second.
	_, err := prior.Collect()
	require.NoError(t, err)

	select {
	case fs := <-collected:
		require.Len(t, fs, 1)
		assert.Equal(t, "new.txt", fs[0].Path)
	case <-time.After(time.Second):
		t.Fatal("second stream never released")
	}
}

func TestTask_On_DoneAndError(t *testing.T) {
	tk := New("handlers")
	tk.ReadFrom([]*stream.File{{Path: "a.txt"}})

	var got []error
	done := make(chan struct{})
	tk.On("done", func(err error) {
		got = append(got, err)
		close(done)
	})

	_, err := tk.Stream().Collect()
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("done handler never fired")
	}
	require.Len(t, got, 1)
	assert.NoError(t, got[0])
}

func TestTask_PipeAfterWriteCompletes(t *testing.T) {
	dest := t.TempDir()
	noop := func(in <-chan *stream.File, out chan<- *stream.File) error {
		for f := range in {
			out <- f
		}
		return nil
	}

	tk := New("chained")
	tk.ReadFrom([]*stream.File{{Path: "a.txt", Data: []byte("a")}})
	tk.Write(dest)
	tk.Pipe(noop)

	require.NoError(t, tk.Stream().Wait(context.Background()))
}

func TestTask_On_NoStreamIsNoop(t *testing.T) {
	tk := New("empty")
	assert.NotPanics(t, func() {
		tk.On("done", func(error) {})
		tk.On("error", func(error) {})
	})
}

func TestTask_MarkLifecycle(t *testing.T) {
	tk := New("lifecycle")
	start := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)

	tk.MarkStarted(start)
	assert.Equal(t, StateStarted, tk.State())
	assert.Equal(t, start, tk.StartedAt())
	assert.True(t, tk.EndedAt().IsZero())

	assert.True(t, tk.MarkDone(end))
	assert.Equal(t, StateDone, tk.State())
	assert.Equal(t, end, tk.EndedAt())

	// Duplicate completion signals are ignored.
	assert.False(t, tk.MarkDone(end.Add(time.Second)))
	assert.Equal(t, end, tk.EndedAt())

	// A re-trigger resets the end timestamp.
	restart := end.Add(time.Minute)
	tk.MarkStarted(restart)
	assert.Equal(t, StateStarted, tk.State())
	assert.Equal(t, restart, tk.StartedAt())
	assert.True(t, tk.EndedAt().IsZero())

	tk.MarkError(restart.Add(time.Second))
	assert.Equal(t, StateError, tk.State())
}

func TestTask_Snapshot(t *testing.T) {
	tk := New("snap",
		WithDeps(Dep("a"), Dep("b")),
		WithBody(func(context.Context, *Task) (Result, error) { return NoResult(), nil }),
	)
	tk.pendingRefs = nil
	tk.deps = []dep{{name: "a"}, {name: "b"}}

	snap := tk.Snapshot()
	assert.Equal(t, "snap", snap.Name)
	assert.Equal(t, StateNotStarted, snap.State)
	assert.Equal(t, []string{"a", "b"}, snap.Deps)
	assert.True(t, snap.HasBody)
}

func TestResult_Await(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, NoResult().Await(ctx))

	waited := false
	res := DeferredResult(func(context.Context) error {
		waited = true
		return nil
	})
	require.Equal(t, ResultDeferred, res.Kind)
	require.NoError(t, res.Await(ctx))
	assert.True(t, waited)

	boom := errors.New("boom")
	assert.ErrorIs(t, DeferredResult(func(context.Context) error { return boom }).Await(ctx), boom)
}
