package task

import (
	"context"

	"github.com/weftlabs/weft/internal/stream"
)

// ResultKind tags what a task activation produced.
type ResultKind int

const (
	// ResultNone means the activation finished as soon as the body returned
	// (barrier tasks, synchronous bodies).
	ResultNone ResultKind = iota
	// ResultStream means the activation's completion is the completion of an
	// in-flight pipeline.
	ResultStream
	// ResultDeferred means the activation completes when the wait function
	// returns.
	ResultDeferred
)

// Result is the tagged outcome of invoking a task's completion wrapper. The
// scheduler switches on Kind instead of probing for stream-like shape.
type Result struct {
	Kind   ResultKind
	Stream *stream.Pipeline
	wait   func(ctx context.Context) error
}

// NoResult reports an activation that is complete already.
func NoResult() Result {
	return Result{Kind: ResultNone}
}

// StreamResult reports an activation whose completion is p's completion.
func StreamResult(p *stream.Pipeline) Result {
	return Result{Kind: ResultStream, Stream: p}
}

// DeferredResult reports an activation that completes when wait returns.
func DeferredResult(wait func(ctx context.Context) error) Result {
	return Result{Kind: ResultDeferred, wait: wait}
}

// Await blocks until the activation behind the result has finished.
func (r Result) Await(ctx context.Context) error {
	switch r.Kind {
	case ResultStream:
		return r.Stream.Wait(ctx)
	case ResultDeferred:
		return r.wait(ctx)
	default:
		return nil
	}
}
