package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"logiscan/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(context.Context) (pipeline.Result, error) {
	r.calls.Add(1)
	return pipeline.Result{Processed: 1}, r.err
}

func TestIngestSchedulerRunsAtStartAndOnTick(t *testing.T) {
	r := &countingRunner{}
	w := &IngestScheduler{Runner: r, Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestIngestSchedulerSurvivesRunErrors(t *testing.T) {
	for _, err := range []error{pipeline.ErrAlreadyRunning, errors.New("boom")} {
		r := &countingRunner{err: err}
		w := &IngestScheduler{Runner: r, Interval: 10 * time.Millisecond}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Start(ctx) }()

		require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
		cancel()
		assert.NoError(t, <-done)
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Start(ctx context.Context) error { return f(ctx) }

func TestManagerStopsOnCancel(t *testing.T) {
	var stopped atomic.Int32
	w := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(w, w).Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, int32(2), stopped.Load())
}

func TestManagerPropagatesWorkerError(t *testing.T) {
	boom := errors.New("listen: address in use")
	failing := workerFunc(func(context.Context) error { return boom })
	waiting := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})

	err := NewManager(failing, waiting).Start(context.Background())
	assert.ErrorIs(t, err, boom)
}
