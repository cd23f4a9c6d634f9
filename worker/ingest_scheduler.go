package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"logiscan/internal/pipeline"
)

// Runner runs one ingestion pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// IngestScheduler runs the pipeline once at start and then on every tick.
// Run failures are logged and never stop the scheduler.
type IngestScheduler struct {
	Runner   Runner
	Interval time.Duration
}

func (w *IngestScheduler) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}

	// initial run
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *IngestScheduler) runOnce(ctx context.Context) {
	res, err := w.Runner.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrAlreadyRunning):
		slog.Warn("ingest-scheduler: run skipped, another run in progress")
	case err != nil:
		slog.Error("ingest-scheduler: run failed", "error", err)
	default:
		slog.Info("ingest-scheduler: run completed",
			"processed", res.Processed,
			"new_articles", res.NewArticles,
			"errors", len(res.Errors))
	}
}
