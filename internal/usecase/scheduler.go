package usecase

import (
	"context"
	"log/slog"
	"time"

	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/ports"
)

// WatchTarget describes the list a Watcher keeps refreshing.
type WatchTarget struct {
	Query   domain.Query
	Address string
	Size    int
}

// Watcher wires a scheduler driver to periodic list refreshes.
type Watcher struct {
	driver     ports.Scheduler
	aggregator *Aggregator
	target     WatchTarget
	onPage     func(time.Time, domain.ProposalListPage)
	logger     *slog.Logger
}

// NewWatcher returns a helper that starts and stops recurring refreshes.
func NewWatcher(driver ports.Scheduler, aggregator *Aggregator, target WatchTarget, onPage func(time.Time, domain.ProposalListPage), logger *slog.Logger) *Watcher {
	return &Watcher{
		driver:     driver,
		aggregator: aggregator,
		target:     target,
		onPage:     onPage,
		logger:     logger,
	}
}

// Start registers the refresh job with the scheduler.
func (w *Watcher) Start(ctx context.Context) error {
	if w.driver == nil || w.aggregator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		page, err := w.aggregator.FetchPages(ctx, w.target.Query, w.target.Address, w.target.Size)
		if err != nil {
			if w.logger != nil {
				w.logger.Error("refresh failed", "space", w.target.Query.Space, "error", err)
			}
			return
		}
		if w.onPage != nil {
			w.onPage(trigger, page)
		}
	}

	return w.driver.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (w *Watcher) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}

	return w.driver.Stop(ctx)
}
