package pipeline

import (
	"context"

	"github.com/Vostanis/etl-io/pkg/sink"
	"github.com/Vostanis/etl-io/pkg/source"
	"go.uber.org/zap"
)

// Runner is the type-erased view of a Pipe used by registries and the CLI.
type Runner interface {
	Name() string
	// Preview runs extract and transform and returns the output value.
	Preview(ctx context.Context, locator string) (any, error)
	// Run runs extract, transform and load.
	Run(ctx context.Context, locator, destination, documentID string) error
	// Configure returns a copy with the non-zero settings applied.
	Configure(s Settings) Runner
}

// Settings are collaborator overrides applied through Runner.Configure.
// Reader and Sink only affect steps that use the defaults.
type Settings struct {
	Reader              *source.Reader
	Sink                sink.Upserter
	Logger              *zap.Logger
	PropagateLoadErrors *bool
}

var _ Runner = (*Pipe[struct{}, struct{}])(nil)

func (p *Pipe[I, O]) Preview(ctx context.Context, locator string) (any, error) {
	out, err := p.ExtractAndTransform(ctx, locator)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pipe[I, O]) Run(ctx context.Context, locator, destination, documentID string) error {
	return p.ExtractTransformLoad(ctx, locator, destination, documentID)
}

func (p *Pipe[I, O]) Configure(s Settings) Runner {
	c := p.clone()
	if s.Reader != nil {
		c.reader = s.Reader
	}
	if s.Sink != nil {
		c.sink = s.Sink
	}
	if s.Logger != nil {
		c.log = s.Logger
	}
	if s.PropagateLoadErrors != nil {
		c.propagateLoadErrors = *s.PropagateLoadErrors
	}
	return c
}
