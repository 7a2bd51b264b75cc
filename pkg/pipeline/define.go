package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vostanis/etl-io/pkg/source"
)

// ErrNoTransform is returned (or panicked with) when a binding has no
// transform step.
var ErrNoTransform = errors.New("pipeline: transform step is required")

// Steps declares the steps of one binding. Transform is required; a nil
// Extract or Load falls back to the default.
type Steps[I, O any] struct {
	Extract   ExtractFunc[I]
	Transform TransformFunc[I, O]
	Load      LoadFunc[O]
}

// Define builds a named Pipe from a block of steps.
//
//	p, err := pipeline.Define("thoughts", pipeline.Steps[Original, Reformatted]{
//	    Transform: reformat,
//	})
func Define[I, O any](name string, steps Steps[I, O]) (*Pipe[I, O], error) {
	if steps.Transform == nil {
		return nil, fmt.Errorf("define %q: %w", name, ErrNoTransform)
	}
	return New(steps.Transform).
		Named(name).
		WithExtract(steps.Extract).
		WithLoad(steps.Load), nil
}

// MustDefine is like Define but panics on error. Intended for package-level
// registration.
func MustDefine[I, O any](name string, steps Steps[I, O]) *Pipe[I, O] {
	p, err := Define(name, steps)
	if err != nil {
		panic(err)
	}
	return p
}

// Bind builds a Pipe from a binding type. The binding must implement
// Transformer[I, O], which the compiler checks; if it also implements
// Extractor[I] or Loader[O] those methods replace the defaults.
func Bind[I, O any](binding Transformer[I, O]) *Pipe[I, O] {
	if binding == nil {
		panic(ErrNoTransform)
	}
	p := New(binding.Transform)
	if e, ok := any(binding).(Extractor[I]); ok {
		p.extract = e.Extract
	}
	if l, ok := any(binding).(Loader[O]); ok {
		p.load = l.Load
	}
	return p
}

// ExtractLiteral returns an extract step that parses the locator itself as
// a JSON document instead of treating it as a path.
func ExtractLiteral[I any]() ExtractFunc[I] {
	return func(_ context.Context, literal string) (I, error) {
		return source.Decode[I]([]byte(literal))
	}
}
