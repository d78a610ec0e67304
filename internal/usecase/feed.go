package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"ProposalBoard/internal/domain"
)

// ErrFeedNotStarted is returned by LoadMore before the first Reset.
var ErrFeedNotStarted = errors.New("feed has no query")

// FeedResult is the outcome of a single LoadMore.
type FeedResult struct {
	Page domain.ProposalListPage
	// Stale is set when the query changed while the request was in flight;
	// the response was dropped and Page is empty.
	Stale bool
	// Waiting counts pages that arrived ahead of an earlier, still missing page.
	Waiting int
}

// Feed accumulates pages for one query at a time on behalf of an
// infinite-scroll caller. Pages are committed in the order they were issued
// regardless of completion order, and responses issued for a superseded
// query are discarded.
type Feed struct {
	aggregator *Aggregator
	logger     *slog.Logger

	mu         sync.Mutex
	query      domain.Query
	address    string
	generation uint64
	next       int
	lastPage   int
	retry      []int
	committed  []domain.RawPage
	pending    map[int]domain.RawPage
}

// NewFeed builds a feed on top of the aggregator.
func NewFeed(aggregator *Aggregator, logger *slog.Logger) *Feed {
	return &Feed{aggregator: aggregator, logger: logger}
}

// Reset points the feed at q for address. When q addresses the same remote
// result set as before (only sorting differs) the loaded pages are kept and
// Reset reports true; otherwise in-flight requests become stale.
func (f *Feed) Reset(q domain.Query, address string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation != 0 && f.query.Signature() == q.Signature() && f.address == address {
		f.query = q
		return true
	}

	f.generation++
	f.query = q
	f.address = address
	f.next = 1
	f.lastPage = 0
	f.retry = nil
	f.committed = nil
	f.pending = map[int]domain.RawPage{}
	return false
}

// LoadMore fetches the next page of the current query and returns the merged,
// ranked view over every page committed so far.
func (f *Feed) LoadMore(ctx context.Context) (FeedResult, error) {
	f.mu.Lock()
	if f.generation == 0 {
		f.mu.Unlock()
		return FeedResult{}, ErrFeedNotStarted
	}
	generation, q, address := f.generation, f.query, f.address
	pageNo, ok := f.claim()
	f.mu.Unlock()

	if !ok {
		return f.Current(ctx)
	}

	raw, err := f.aggregator.FetchRaw(ctx, q, pageNo)

	f.mu.Lock()
	if generation != f.generation {
		f.mu.Unlock()
		f.debug("discard stale page", "page", pageNo, "signature", q.Signature())
		return FeedResult{Stale: true}, nil
	}
	if err != nil {
		f.retry = append(f.retry, pageNo)
		slices.Sort(f.retry)
		f.mu.Unlock()
		return FeedResult{}, err
	}
	f.commit(raw)
	pages := slices.Clone(f.committed)
	waiting := len(f.pending)
	f.mu.Unlock()

	return f.assemble(ctx, generation, q, address, pages, waiting)
}

// Current re-assembles the committed pages without fetching another page.
func (f *Feed) Current(ctx context.Context) (FeedResult, error) {
	f.mu.Lock()
	if f.generation == 0 {
		f.mu.Unlock()
		return FeedResult{}, ErrFeedNotStarted
	}
	generation, q, address := f.generation, f.query, f.address
	pages := slices.Clone(f.committed)
	waiting := len(f.pending)
	f.mu.Unlock()

	return f.assemble(ctx, generation, q, address, pages, waiting)
}

// Pages returns a copy of the committed raw pages.
func (f *Feed) Pages() []domain.RawPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.committed)
}

func (f *Feed) assemble(ctx context.Context, generation uint64, q domain.Query, address string, pages []domain.RawPage, waiting int) (FeedResult, error) {
	if len(pages) == 0 && waiting > 0 {
		return FeedResult{Waiting: waiting}, nil
	}

	page := f.aggregator.Assemble(ctx, q, address, pages)

	f.mu.Lock()
	stale := generation != f.generation
	f.mu.Unlock()
	if stale {
		return FeedResult{Stale: true}, nil
	}
	return FeedResult{Page: page, Waiting: waiting}, nil
}

// claim picks the page number to request next: failed pages first, then the
// next unissued page unless the source already reported its last page.
func (f *Feed) claim() (int, bool) {
	if len(f.retry) > 0 {
		pageNo := f.retry[0]
		f.retry = f.retry[1:]
		return pageNo, true
	}
	if f.lastPage != 0 && f.next > f.lastPage {
		return 0, false
	}
	pageNo := f.next
	f.next++
	return pageNo, true
}

func (f *Feed) commit(raw domain.RawPage) {
	if !raw.HasMore && (f.lastPage == 0 || raw.Number < f.lastPage) {
		f.lastPage = raw.Number
	}
	if f.lastPage != 0 && raw.Number > f.lastPage {
		return
	}
	f.pending[raw.Number] = raw
	for {
		nextNo := len(f.committed) + 1
		p, ok := f.pending[nextNo]
		if !ok {
			return
		}
		delete(f.pending, nextNo)
		f.committed = append(f.committed, p)
		if f.lastPage != 0 && nextNo >= f.lastPage {
			// anything issued past the terminal page is dropped
			clear(f.pending)
			return
		}
	}
}

func (f *Feed) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
