// Package stream implements the continuable file pipelines that back task
// bodies: a source of files flows through transforms into a destination, and
// every handle in the chain exposes a single completion signal.
package stream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is the unit of data moving through a pipeline.
type File struct {
	// Path is the file's origin path; transforms may rewrite it and the
	// sink uses its base name for the output file.
	Path string
	Data []byte
}

// Transform consumes files from in and emits files to out. It must not close
// out; the pipeline does that once the transform returns. A transform may
// aggregate (consume everything before emitting) or map file-by-file.
type Transform func(in <-chan *File, out chan<- *File) error

// Pipeline is one handle in a chain of stream stages. Deriving a new stage
// with Pipe or To returns a new handle whose completion covers the whole
// chain up to that stage.
type Pipeline struct {
	out <-chan *File

	mu      sync.Mutex
	err     error
	done    chan struct{}
	closed  bool
	doneFns []func()
	errFns  []func(error)
}

func newPipeline() *Pipeline {
	return &Pipeline{done: make(chan struct{})}
}

// Done is closed once the stage (and everything upstream of it) has finished,
// successfully or not.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Err returns the failure of this stage or any upstream stage. It is only
// meaningful once Done is closed.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Wait blocks until the pipeline completes or ctx is cancelled.
func (p *Pipeline) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return p.Err()
	}
}

// OnDone registers fn to run when the pipeline completes without error.
// If the pipeline already completed, fn runs immediately.
func (p *Pipeline) OnDone(fn func()) {
	p.mu.Lock()
	if p.closed {
		err := p.err
		p.mu.Unlock()
		if err == nil {
			fn()
		}
		return
	}
	p.doneFns = append(p.doneFns, fn)
	p.mu.Unlock()
}

// OnError registers fn to run if the pipeline completes with an error.
func (p *Pipeline) OnError(fn func(error)) {
	p.mu.Lock()
	if p.closed {
		err := p.err
		p.mu.Unlock()
		if err != nil {
			fn(err)
		}
		return
	}
	p.errFns = append(p.errFns, fn)
	p.mu.Unlock()
}

// finish records the stage outcome and fires completion listeners exactly once.
func (p *Pipeline) finish(err error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.err = err
	doneFns := p.doneFns
	errFns := p.errFns
	p.doneFns = nil
	p.errFns = nil
	close(p.done)
	p.mu.Unlock()

	if err != nil {
		for _, fn := range errFns {
			fn(err)
		}
		return
	}
	for _, fn := range doneFns {
		fn()
	}
}

// SourceOption configures a Source pipeline.
type SourceOption func(*sourceOptions)

type sourceOptions struct {
	hold <-chan struct{}
}

// HoldUntil keeps the source from emitting anything until ch is closed. This
// is the linearization gate: a re-triggered task holds its new source behind
// the previous activation's still-draining stream.
func HoldUntil(ch <-chan struct{}) SourceOption {
	return func(o *sourceOptions) { o.hold = ch }
}

// Source creates a producer pipeline that reads every file matching the given
// glob patterns, in pattern order then matched-path order.
func Source(globs []string, opts ...SourceOption) *Pipeline {
	var so sourceOptions
	for _, opt := range opts {
		opt(&so)
	}

	p := newPipeline()
	out := make(chan *File)
	p.out = out

	go func() {
		if so.hold != nil {
			<-so.hold
		}
		err := emitGlobs(globs, out)
		close(out)
		p.finish(err)
	}()
	return p
}

func emitGlobs(globs []string, out chan<- *File) error {
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		for _, path := range matches {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("stat %q: %w", path, err)
			}
			if info.IsDir() {
				continue
			}
			data, err := os.ReadFile(path) // #nosec G304 -- paths come from the caller's own globs
			if err != nil {
				return fmt.Errorf("read %q: %w", path, err)
			}
			out <- &File{Path: path, Data: data}
		}
	}
	return nil
}

// FromFiles creates a producer pipeline over an in-memory file set.
func FromFiles(files []*File, opts ...SourceOption) *Pipeline {
	var so sourceOptions
	for _, opt := range opts {
		opt(&so)
	}

	p := newPipeline()
	out := make(chan *File)
	p.out = out

	go func() {
		if so.hold != nil {
			<-so.hold
		}
		for _, f := range files {
			out <- f
		}
		close(out)
		p.finish(nil)
	}()
	return p
}

// Pipe derives a new stage that applies tf to everything this stage emits.
func (p *Pipeline) Pipe(tf Transform) *Pipeline {
	np := newPipeline()
	out := make(chan *File)
	np.out = out

	go func() {
		err := tf(p.out, out)
		close(out)
		// Drain any remainder so upstream goroutines are not leaked when
		// a transform bails out early.
		for range p.out {
		}
		<-p.Done()
		if err == nil {
			err = p.Err()
		}
		np.finish(err)
	}()
	return np
}

// To derives a terminal stage that writes each file into dest, creating the
// directory if needed. The returned handle emits nothing; its completion
// signal is the one a task ultimately waits on. Stages derived from it see an
// empty input and complete with the sink.
func (p *Pipeline) To(dest string) *Pipeline {
	np := newPipeline()
	out := make(chan *File)
	close(out)
	np.out = out

	go func() {
		err := writeAll(p.out, dest)
		for range p.out {
		}
		<-p.Done()
		if err == nil {
			err = p.Err()
		}
		np.finish(err)
	}()
	return np
}

func writeAll(in <-chan *File, dest string) error {
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return fmt.Errorf("create dest %q: %w", dest, err)
	}
	for f := range in {
		path := filepath.Join(dest, filepath.Base(f.Path))
		if err := os.WriteFile(path, f.Data, 0o644); err != nil { //nolint:gosec // build outputs are world-readable
			return fmt.Errorf("write %q: %w", path, err)
		}
	}
	return nil
}

// Collect derives a terminal stage that gathers every emitted file into
// memory. Used by tests and by callers that post-process results themselves.
func (p *Pipeline) Collect() ([]*File, error) {
	var files []*File
	for f := range p.out {
		files = append(files, f)
	}
	<-p.Done()
	return files, p.Err()
}
