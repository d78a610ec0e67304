package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProposalBoard/internal/domain"
)

type manualScheduler struct {
	job     func(time.Time)
	stopped bool
}

func (m *manualScheduler) Start(_ context.Context, job func(time.Time)) error {
	m.job = job
	return nil
}

func (m *manualScheduler) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func TestWatcherRefreshesOnEveryTick(t *testing.T) {
	records := []domain.ProposalRecord{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	agg := NewAggregator(AggregatorDeps{Proposals: &pagedSource{records: records}})
	driver := &manualScheduler{}

	var seen []int
	w := NewWatcher(driver, agg, WatchTarget{Query: domain.Query{Space: "s", Limit: 2}, Size: 2},
		func(_ time.Time, page domain.ProposalListPage) {
			seen = append(seen, len(page.Items))
		}, nil)

	ctx := context.Background()
	require.NoError(t, w.Start(ctx))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())
	assert.Equal(t, []int{3, 3}, seen)

	require.NoError(t, w.Stop(ctx))
	assert.True(t, driver.stopped)
}

func TestWatcherSkipsFailedRefresh(t *testing.T) {
	agg := NewAggregator(AggregatorDeps{})
	driver := &manualScheduler{}
	called := false
	w := NewWatcher(driver, agg, WatchTarget{Query: domain.Query{Space: "s", Limit: 2}}, func(time.Time, domain.ProposalListPage) {
		called = true
	}, nil)

	require.NoError(t, w.Start(context.Background()))
	driver.job(time.Now())
	assert.False(t, called)
}
