package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTickerSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	s := NewTickerScheduler(5 * time.Millisecond)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.NoError(t, s.Start(context.Background(), func(time.Time) { t.Error("second job must not run") }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestTickerSchedulerStopsWithContext(t *testing.T) {
	s := NewTickerScheduler(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	require.NoError(t, s.Start(ctx, func(time.Time) { close(started) }))
	<-started
	cancel()

	require.NoError(t, s.Stop(context.Background()))
}

func TestTickerSchedulerStopWithoutStart(t *testing.T) {
	assert.NoError(t, NewTickerScheduler(0).Stop(context.Background()))
	assert.NoError(t, NewTickerScheduler(time.Second).Start(context.Background(), nil))
}
