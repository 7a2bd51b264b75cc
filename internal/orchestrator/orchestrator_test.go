package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsEveryTask(t *testing.T) {
	var ran, closed atomic.Int32
	task := func(name string, err error) Task {
		return Task{
			Name: name,
			Run: func(context.Context) error {
				ran.Add(1)
				return err
			},
			Close: func() error {
				closed.Add(1)
				return nil
			},
		}
	}
	boom := errors.New("boom")

	err := NewOrchestrator(nil, 0,
		task("a", nil),
		task("b", boom),
		task("c", nil),
	).Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b: boom")
	assert.EqualValues(t, 3, ran.Load())
	assert.EqualValues(t, 3, closed.Load())
}

func TestExecuteNoTasks(t *testing.T) {
	assert.NoError(t, NewOrchestrator(nil, 2).Execute(context.Background()))
}

func TestExecuteRespectsParallelism(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	run := func(context.Context) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	}
	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Name: "t", Run: run}
	}

	require.NoError(t, NewOrchestrator(nil, 1, tasks...).Execute(context.Background()))
	assert.Equal(t, 1, peak)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var closed bool
	err := NewOrchestrator(nil, 0, Task{
		Name:  "late",
		Run:   func(context.Context) error { t.Error("task ran after cancel"); return nil },
		Close: func() error { closed = true; return nil },
	}).Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, closed)
}
