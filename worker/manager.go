package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Worker is a long-running unit that stops when ctx is cancelled.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts and supervises a set of workers. The first worker error
// cancels the others.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

func (m *Manager) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, w := range m.workers {
		w := w
		g.Go(func() error {
			return w.Start(gctx)
		})
	}
	return g.Wait()
}
