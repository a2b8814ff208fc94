package stream

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"strings"
)

// TransformFunc builds a Transform from its arguments. Transforms are looked
// up by name so that taskfiles can reference them declaratively; there is no
// per-transform method surface on tasks or pipelines.
type TransformFunc func(args []string) (Transform, error)

var transforms = map[string]TransformFunc{
	"concat":  concatTransform,
	"gzip":    gzipTransform,
	"rename":  renameTransform,
	"replace": replaceTransform,
}

// Lookup resolves a transform spec of the form "name" or "name:arg1:arg2".
func Lookup(spec string) (Transform, error) {
	parts := strings.Split(spec, ":")
	name := parts[0]
	fn, ok := transforms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	tf, err := fn(parts[1:])
	if err != nil {
		return nil, fmt.Errorf("transform %q: %w", name, err)
	}
	return tf, nil
}

// LookupAll resolves every spec, failing on the first unknown or malformed one.
func LookupAll(specs []string) ([]Transform, error) {
	tfs := make([]Transform, 0, len(specs))
	for _, spec := range specs {
		tf, err := Lookup(spec)
		if err != nil {
			return nil, err
		}
		tfs = append(tfs, tf)
	}
	return tfs, nil
}

// concat:<name> gathers all inputs and emits a single file with the given
// name, contents joined in arrival order.
func concatTransform(args []string) (Transform, error) {
	if len(args) != 1 || args[0] == "" {
		return nil, fmt.Errorf("want one argument (output name), got %d", len(args))
	}
	name := args[0]
	return func(in <-chan *File, out chan<- *File) error {
		var buf bytes.Buffer
		for f := range in {
			buf.Write(f.Data)
			if len(f.Data) > 0 && f.Data[len(f.Data)-1] != '\n' {
				buf.WriteByte('\n')
			}
		}
		out <- &File{Path: name, Data: buf.Bytes()}
		return nil
	}, nil
}

// gzip compresses each file and appends ".gz" to its path.
func gzipTransform(args []string) (Transform, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("takes no arguments, got %d", len(args))
	}
	return func(in <-chan *File, out chan<- *File) error {
		for f := range in {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			if _, err := zw.Write(f.Data); err != nil {
				return fmt.Errorf("gzip %q: %w", f.Path, err)
			}
			if err := zw.Close(); err != nil {
				return fmt.Errorf("gzip %q: %w", f.Path, err)
			}
			out <- &File{Path: f.Path + ".gz", Data: buf.Bytes()}
		}
		return nil
	}, nil
}

// rename:<old>:<new> substitutes old with new in each file's path.
func renameTransform(args []string) (Transform, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want two arguments (old, new), got %d", len(args))
	}
	oldPart, newPart := args[0], args[1]
	return func(in <-chan *File, out chan<- *File) error {
		for f := range in {
			out <- &File{Path: strings.ReplaceAll(f.Path, oldPart, newPart), Data: f.Data}
		}
		return nil
	}, nil
}

// replace:<old>:<new> substitutes old with new in each file's contents.
func replaceTransform(args []string) (Transform, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want two arguments (old, new), got %d", len(args))
	}
	oldPart, newPart := []byte(args[0]), []byte(args[1])
	return func(in <-chan *File, out chan<- *File) error {
		for f := range in {
			out <- &File{Path: f.Path, Data: bytes.ReplaceAll(f.Data, oldPart, newPart)}
		}
		return nil
	}, nil
}
