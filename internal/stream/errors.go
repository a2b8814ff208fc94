package stream

import "errors"

// ErrUnknownTransform is returned when a taskfile references a transform name
// that is not registered.
var ErrUnknownTransform = errors.New("unknown transform")
