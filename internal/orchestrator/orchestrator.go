// Package orchestrator runs a batch of independent pipeline jobs.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is one pipeline run and the resources it must release afterwards.
type Task struct {
	Name  string
	Run   func(ctx context.Context) error
	Close func() error
}

// Orchestrator manages the execution of a set of tasks. A failing task does
// not stop the others.
type Orchestrator struct {
	tasks       []Task
	parallelism int
	log         *zap.Logger
}

// NewOrchestrator creates an orchestrator running at most parallelism tasks
// at once. parallelism <= 0 means no limit.
func NewOrchestrator(log *zap.Logger, parallelism int, tasks ...Task) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{tasks: tasks, parallelism: parallelism, log: log}
}

// Execute runs every task and returns the failures joined, in task order.
func (o *Orchestrator) Execute(ctx context.Context) error {
	errs := make([]error, len(o.tasks))

	var group errgroup.Group
	if o.parallelism > 0 {
		group.SetLimit(o.parallelism)
	}
	for i, task := range o.tasks {
		i, task := i, task
		group.Go(func() error {
			errs[i] = o.runTask(ctx, task)
			return nil
		})
	}
	_ = group.Wait()

	return errors.Join(errs...)
}

func (o *Orchestrator) runTask(ctx context.Context, task Task) error {
	if task.Close != nil {
		defer func() {
			if err := task.Close(); err != nil {
				o.log.Warn("error closing task", zap.String("task", task.Name), zap.Error(err))
			}
		}()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", task.Name, err)
	}

	o.log.Info("starting task", zap.String("task", task.Name))
	if err := task.Run(ctx); err != nil {
		o.log.Error("task failed", zap.String("task", task.Name), zap.Error(err))
		return fmt.Errorf("%s: %w", task.Name, err)
	}
	o.log.Info("task completed", zap.String("task", task.Name))
	return nil
}
