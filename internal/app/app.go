package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ProposalBoard/internal/config"
	"ProposalBoard/internal/domain"
	"ProposalBoard/internal/infrastructure/nance"
	"ProposalBoard/internal/infrastructure/scheduler"
	"ProposalBoard/internal/infrastructure/snapshot"
	"ProposalBoard/internal/logging"
	"ProposalBoard/internal/transport/httpapi"
	"ProposalBoard/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	aggregator *usecase.Aggregator
	votes      *usecase.VoteBrowser
	clock      *usecase.CycleClock
}

// New builds the application from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	proposals := nance.NewClient(
		cfg.Nance.BaseURL,
		&http.Client{Timeout: cfg.Nance.Timeout},
		baseLogger.With("component", "source.nance"),
	)
	votes := snapshot.NewClient(
		cfg.Snapshot.HubURL,
		cfg.Snapshot.APIKey,
		&http.Client{Timeout: cfg.Snapshot.Timeout},
		baseLogger.With("component", "source.snapshot"),
	)

	aggregator := usecase.NewAggregator(usecase.AggregatorDeps{
		Proposals: proposals,
		Votes:     votes,
		Logger:    baseLogger.With("component", "aggregator"),
	})

	browser := usecase.NewVoteBrowser(usecase.VoteBrowserDeps{
		Tallies: votes,
		Votes:   votes,
		Logger:  baseLogger.With("component", "votes"),
	})

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		aggregator: aggregator,
		votes:      browser,
		clock:      usecase.NewCycleClock(proposals, nil),
	}
}

// Query returns a list query for space filled with configured defaults.
func (a *Application) Query(space string) domain.Query {
	if space == "" {
		space = a.cfg.Feed.Space
	}
	return domain.Query{Space: space, Limit: a.cfg.Feed.Limit}
}

// List loads the first pages of q through a Feed, issuing the page requests
// concurrently. Pages are still committed in issue order.
func (a *Application) List(ctx context.Context, q domain.Query, address string, pages int) (domain.ProposalListPage, error) {
	if err := q.Validate(); err != nil {
		return domain.ProposalListPage{}, err
	}
	if pages < 1 {
		pages = 1
	}

	feed := usecase.NewFeed(a.aggregator, a.logger.With("component", "feed"))
	feed.Reset(q, address)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			_, err := feed.LoadMore(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ProposalListPage{}, err
	}

	res, err := feed.Current(ctx)
	if err != nil {
		return domain.ProposalListPage{}, err
	}
	return res.Page, nil
}

// Cycle reports the current governance event of space.
func (a *Application) Cycle(ctx context.Context, space string) (domain.SpaceInfo, domain.Countdown, error) {
	if space == "" {
		space = a.cfg.Feed.Space
	}
	return a.clock.Countdown(ctx, space)
}

// Votes returns one page of the votes cast on a proposal.
func (a *Application) Votes(ctx context.Context, q domain.VotesQuery) (domain.VoteList, error) {
	return a.votes.List(ctx, q)
}

// Serve runs the JSON API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	svc := httpapi.NewService(a.cfg.HTTP.Listen, a.aggregator, a.clock, a.votes, a.cfg.Feed.Limit, a.logger.With("component", "httpapi"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http api: %w", err)
	}
	return <-errCh
}

// Watch refreshes target on the configured interval until ctx is cancelled.
func (a *Application) Watch(ctx context.Context, target usecase.WatchTarget, onPage func(time.Time, domain.ProposalListPage)) error {
	driver := scheduler.NewTickerScheduler(a.cfg.Watch.Interval)
	watcher := usecase.NewWatcher(driver, a.aggregator, target, onPage, a.logger.With("component", "watcher"))

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := watcher.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	return nil
}
