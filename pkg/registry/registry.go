// Package registry holds named pipeline bindings so they can be looked up
// at run time, e.g. by the CLI.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Vostanis/etl-io/pkg/pipeline"
)

// Registry is a set of pipelines keyed by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]pipeline.Runner
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{runners: map[string]pipeline.Runner{}}
}

// Default is the process-wide registry that generated bindings register into.
var Default = New()

// Register adds every runner. Each one is independent of the others; if any
// is nil or its name is taken, nothing is registered.
func (r *Registry) Register(runners ...pipeline.Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(runners))
	for i, runner := range runners {
		if runner == nil {
			return fmt.Errorf("register pipeline %d: %w", i, pipeline.ErrNoTransform)
		}
		name := runner.Name()
		if _, ok := r.runners[name]; ok || seen[name] {
			return fmt.Errorf("pipeline %q is already registered", name)
		}
		seen[name] = true
	}
	for _, runner := range runners {
		r.runners[runner.Name()] = runner
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(runners ...pipeline.Runner) {
	if err := r.Register(runners...); err != nil {
		panic(err)
	}
}

// Get returns the pipeline registered under name.
func (r *Registry) Get(name string) (pipeline.Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("unknown pipeline: %q", name)
	}
	return runner, nil
}

// Names lists registered pipelines in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds runners to the Default registry.
func Register(runners ...pipeline.Runner) error {
	return Default.Register(runners...)
}

// MustRegister adds runners to the Default registry, panicking on error.
func MustRegister(runners ...pipeline.Runner) {
	Default.MustRegister(runners...)
}

// Get looks up name in the Default registry.
func Get(name string) (pipeline.Runner, error) {
	return Default.Get(name)
}

// Names lists the Default registry.
func Names() []string {
	return Default.Names()
}
