package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProposalBoard/internal/domain"
)

func TestFeedCommitsInIssueOrder(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			const pages = 5
			src := newGatedSource()
			feed := NewFeed(NewAggregator(AggregatorDeps{Proposals: src}), nil)
			feed.Reset(domain.Query{Space: "s", Limit: 1, Keyword: "k"}, "")

			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < pages; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := feed.LoadMore(ctx)
					assert.NoError(t, err)
				}()
			}
			for i := 0; i < pages; i++ {
				<-src.started
			}

			for _, idx := range rand.New(rand.NewSource(seed)).Perm(pages) {
				src.release(gateKey("s", idx+1))
			}
			wg.Wait()

			committed := feed.Pages()
			require.Len(t, committed, pages)
			for i, p := range committed {
				assert.Equal(t, i+1, p.Number)
			}

			res, err := feed.Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"s/1", "s/2", "s/3", "s/4", "s/5"}, recordIDs(res.Page.Items))
		})
	}
}

func TestFeedBuffersPagesAheadOfMissingOne(t *testing.T) {
	src := newGatedSource()
	feed := NewFeed(NewAggregator(AggregatorDeps{Proposals: src}), nil)
	feed.Reset(domain.Query{Space: "s", Limit: 1, Keyword: "k"}, "")
	ctx := context.Background()

	first := make(chan FeedResult, 1)
	go func() {
		res, _ := feed.LoadMore(ctx)
		first <- res
	}()
	<-src.started

	second := make(chan FeedResult, 1)
	go func() {
		res, _ := feed.LoadMore(ctx)
		second <- res
	}()
	<-src.started

	src.release(gateKey("s", 2))
	early := <-second
	assert.Equal(t, 1, early.Waiting)
	assert.Empty(t, early.Page.Items)
	assert.False(t, early.Page.Empty)

	src.release(gateKey("s", 1))
	done := <-first
	assert.Equal(t, 0, done.Waiting)
	assert.Equal(t, []string{"s/1", "s/2"}, recordIDs(done.Page.Items))
}

func TestFeedDiscardsStaleQuery(t *testing.T) {
	src := newGatedSource()
	feed := NewFeed(NewAggregator(AggregatorDeps{Proposals: src}), nil)
	ctx := context.Background()

	feed.Reset(domain.Query{Space: "old", Limit: 1, Keyword: "a"}, "")
	oldResult := make(chan FeedResult, 1)
	go func() {
		res, err := feed.LoadMore(ctx)
		assert.NoError(t, err)
		oldResult <- res
	}()
	assert.Equal(t, gateKey("old", 1), <-src.started)

	assert.False(t, feed.Reset(domain.Query{Space: "new", Limit: 1, Keyword: "b"}, ""))
	newResult := make(chan FeedResult, 1)
	go func() {
		res, err := feed.LoadMore(ctx)
		assert.NoError(t, err)
		newResult <- res
	}()
	assert.Equal(t, gateKey("new", 1), <-src.started)

	src.release(gateKey("old", 1))
	stale := <-oldResult
	assert.True(t, stale.Stale)
	assert.Empty(t, stale.Page.Items)

	src.release(gateKey("new", 1))
	fresh := <-newResult
	assert.False(t, fresh.Stale)
	assert.Equal(t, []string{"new/1"}, recordIDs(fresh.Page.Items))

	committed := feed.Pages()
	require.Len(t, committed, 1)
	assert.Equal(t, "new/1", committed[0].Items[0].ID)
}

func TestFeedResetWithSameSignatureKeepsPages(t *testing.T) {
	records := []domain.ProposalRecord{
		{ID: "b", Title: "Beta"},
		{ID: "a", Title: "Alpha"},
	}
	feed := NewFeed(NewAggregator(AggregatorDeps{Proposals: &pagedSource{records: records}}), nil)
	ctx := context.Background()

	q := domain.Query{Space: "s", Limit: 10}
	assert.False(t, feed.Reset(q, ""))
	_, err := feed.LoadMore(ctx)
	require.NoError(t, err)

	q.SortBy, q.SortDesc = domain.SortTitle, true
	assert.True(t, feed.Reset(q, ""))
	res, err := feed.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, recordIDs(res.Page.Items))
	assert.Len(t, feed.Pages(), 1)
}

func TestFeedRetriesFailedPageFirst(t *testing.T) {
	records := []domain.ProposalRecord{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	paged := &pagedSource{records: records}
	fail := true
	src := proposalSourceFunc(func(ctx context.Context, req domain.PageRequest) (domain.RawPage, error) {
		if req.Page == 2 && fail {
			fail = false
			return domain.RawPage{}, errors.New("timeout")
		}
		return paged.FetchProposals(ctx, req)
	})
	feed := NewFeed(NewAggregator(AggregatorDeps{Proposals: src}), nil)
	feed.Reset(domain.Query{Space: "s", Limit: 1, Keyword: "k"}, "")
	ctx := context.Background()

	_, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	_, err = feed.LoadMore(ctx)
	require.ErrorIs(t, err, domain.ErrSourceUnavailable)

	res, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, recordIDs(res.Page.Items))

	res, err = feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, recordIDs(res.Page.Items))
	assert.False(t, res.Page.HasMore)

	// the source reported its last page, so no further request is issued
	res, err = feed.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Page.Items, 3)
	assert.Len(t, paged.requests, 3)
}

func TestFeedRequiresReset(t *testing.T) {
	feed := NewFeed(NewAggregator(AggregatorDeps{}), nil)
	_, err := feed.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrFeedNotStarted)
}
