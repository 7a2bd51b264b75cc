// Package pipeline binds an input type and an output type to the three ETL
// steps. Extract and Load have defaults (file or URL fetch, CouchDB upsert);
// Transform is always supplied by the caller.
package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/Vostanis/etl-io/pkg/sink"
	"github.com/Vostanis/etl-io/pkg/source"
	"go.uber.org/zap"
)

// Stage names a pipeline step in logs.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
)

// Extractor fetches a value of I from a locator (file path, URL, or
// whatever an override understands).
type Extractor[I any] interface {
	Extract(ctx context.Context, locator string) (I, error)
}

// Transformer maps an input value to an output value.
type Transformer[I, O any] interface {
	Transform(ctx context.Context, input I) (O, error)
}

// Loader persists an output value under (destination, documentID).
type Loader[O any] interface {
	Load(ctx context.Context, output O, destination, documentID string) error
}

// ETL is the full pipeline contract.
type ETL[I, O any] interface {
	Extractor[I]
	Transformer[I, O]
	Loader[O]
	ExtractAndTransform(ctx context.Context, locator string) (O, error)
	ExtractTransformLoad(ctx context.Context, locator, destination, documentID string) error
}

type (
	ExtractFunc[I any]      func(ctx context.Context, locator string) (I, error)
	TransformFunc[I, O any] func(ctx context.Context, input I) (O, error)
	LoadFunc[O any]         func(ctx context.Context, output O, destination, documentID string) error
)

var _ ETL[struct{}, struct{}] = (*Pipe[struct{}, struct{}])(nil)

// Pipe is a binding of I and O to a set of steps. It holds no payload data
// and is never mutated after construction: every With method returns a
// copy, so one Pipe can serve concurrent calls.
type Pipe[I, O any] struct {
	name      string
	extract   ExtractFunc[I]
	transform TransformFunc[I, O]
	load      LoadFunc[O]

	reader              *source.Reader
	sink                sink.Upserter
	propagateLoadErrors bool
	log                 *zap.Logger
}

// New creates a Pipe around transform with default Extract and Load.
// Panics if transform is nil.
func New[I, O any](transform TransformFunc[I, O]) *Pipe[I, O] {
	if transform == nil {
		panic(ErrNoTransform)
	}
	return &Pipe[I, O]{
		name:      typeName[I]() + " -> " + typeName[O](),
		transform: transform,
		log:       zap.NewNop(),
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

func (p *Pipe[I, O]) clone() *Pipe[I, O] {
	c := *p
	return &c
}

// Named returns a copy of the Pipe registered under name.
func (p *Pipe[I, O]) Named(name string) *Pipe[I, O] {
	c := p.clone()
	if name != "" {
		c.name = name
	}
	return c
}

// WithExtract overrides the extract step. A nil fn restores the default.
func (p *Pipe[I, O]) WithExtract(fn ExtractFunc[I]) *Pipe[I, O] {
	c := p.clone()
	c.extract = fn
	return c
}

// WithLoad overrides the load step. A nil fn restores the default.
// Failures of an overridden load are always returned.
func (p *Pipe[I, O]) WithLoad(fn LoadFunc[O]) *Pipe[I, O] {
	c := p.clone()
	c.load = fn
	return c
}

// WithoutLoad makes load a no-op.
func (p *Pipe[I, O]) WithoutLoad() *Pipe[I, O] {
	return p.WithLoad(func(context.Context, O, string, string) error { return nil })
}

// WithReader sets the reader used by the default extract step.
func (p *Pipe[I, O]) WithReader(r *source.Reader) *Pipe[I, O] {
	c := p.clone()
	c.reader = r
	return c
}

// WithSink sets the store used by the default load step. Unset, documents
// go to CouchDB.
func (p *Pipe[I, O]) WithSink(s sink.Upserter) *Pipe[I, O] {
	c := p.clone()
	c.sink = s
	return c
}

// WithPropagateLoadErrors controls whether a failure of the default load
// step is returned. It is false by default: the failure is logged and the
// call succeeds.
func (p *Pipe[I, O]) WithPropagateLoadErrors(propagate bool) *Pipe[I, O] {
	c := p.clone()
	c.propagateLoadErrors = propagate
	return c
}

// WithLogger sets the logger.
func (p *Pipe[I, O]) WithLogger(log *zap.Logger) *Pipe[I, O] {
	c := p.clone()
	if log != nil {
		c.log = log
	}
	return c
}

// Name identifies the Pipe.
func (p *Pipe[I, O]) Name() string {
	return p.name
}

// Extract fetches the input value.
func (p *Pipe[I, O]) Extract(ctx context.Context, locator string) (I, error) {
	if p.extract != nil {
		return p.extract(ctx, locator)
	}
	r := p.reader
	if r == nil {
		r = source.NewReader(source.WithLogger(p.log))
	}
	return source.Fetch[I](ctx, r, locator)
}

// Transform maps input to output.
func (p *Pipe[I, O]) Transform(ctx context.Context, input I) (O, error) {
	return p.transform(ctx, input)
}

// Load persists output under (destination, documentID).
func (p *Pipe[I, O]) Load(ctx context.Context, output O, destination, documentID string) error {
	if p.load != nil {
		return p.load(ctx, output, destination, documentID)
	}
	s := p.sink
	if s == nil {
		s = sink.NewCouchDB(nil, p.log)
	}
	err := s.Upsert(ctx, output, destination, documentID)
	if err == nil || p.propagateLoadErrors {
		return err
	}
	p.log.Warn("load failed, output not persisted",
		zap.String("pipeline", p.name),
		zap.String("destination", destination),
		zap.String("document_id", documentID),
		zap.Error(err),
	)
	return nil
}

// ExtractAndTransform extracts from locator and transforms the result.
// Transform is not called if extract fails.
func (p *Pipe[I, O]) ExtractAndTransform(ctx context.Context, locator string) (O, error) {
	var zero O
	input, err := runStage(ctx, p, StageExtract, func() (I, error) {
		return p.Extract(ctx, locator)
	})
	if err != nil {
		return zero, err
	}
	return runStage(ctx, p, StageTransform, func() (O, error) {
		return p.Transform(ctx, input)
	})
}

// ExtractTransformLoad runs all three steps in order, stopping at the first
// failure and returning it unchanged.
func (p *Pipe[I, O]) ExtractTransformLoad(ctx context.Context, locator, destination, documentID string) error {
	output, err := p.ExtractAndTransform(ctx, locator)
	if err != nil {
		return err
	}
	_, err = runStage(ctx, p, StageLoad, func() (struct{}, error) {
		return struct{}{}, p.Load(ctx, output, destination, documentID)
	})
	return err
}

// runStage runs fn unless ctx is already done.
func runStage[I, O, T any](ctx context.Context, p *Pipe[I, O], stage Stage, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	start := time.Now()
	v, err := fn()
	if err != nil {
		p.log.Debug("stage failed",
			zap.String("pipeline", p.name),
			zap.String("stage", string(stage)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return zero, err
	}
	p.log.Debug("stage completed",
		zap.String("pipeline", p.name),
		zap.String("stage", string(stage)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return v, nil
}
