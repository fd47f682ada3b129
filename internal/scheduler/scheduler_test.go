package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingRefresher struct {
	calls int32
	err   error
}

func (c *countingRefresher) RefreshForecast(ctx context.Context) ([]byte, error) {
	atomic.AddInt32(&c.calls, 1)
	return []byte(`{}`), c.err
}

func TestScheduler_RunsImmediatelyOnStart(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler(refresher, "@every 1h", time.Second, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&refresher.calls) == 1
	}, time.Second, 5*time.Millisecond)

	status := s.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Contains(t, status, "next_run")
}

func TestScheduler_RecordsLastError(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("bmkg down")}
	s := NewScheduler(refresher, "@every 1h", time.Second, zap.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, ok := s.GetStatus()["last_error"]
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_EmptyScheduleDisables(t *testing.T) {
	refresher := &countingRefresher{}
	s := NewScheduler(refresher, "", time.Second, zap.NewNop())

	require.NoError(t, s.Start())
	s.Stop()

	assert.Equal(t, int32(0), atomic.LoadInt32(&refresher.calls))
	assert.Equal(t, false, s.GetStatus()["running"])
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := NewScheduler(&countingRefresher{}, "every now and then", time.Second, zap.NewNop())
	assert.Error(t, s.Start())
}

type slowRefresher struct {
	delay    time.Duration
	started  int32
	finished int32
}

func (r *slowRefresher) RefreshForecast(ctx context.Context) ([]byte, error) {
	atomic.StoreInt32(&r.started, 1)
	time.Sleep(r.delay)
	atomic.StoreInt32(&r.finished, 1)
	return []byte(`{}`), nil
}

func TestScheduler_StopWaitsForStartupRefresh(t *testing.T) {
	refresher := &slowRefresher{delay: 300 * time.Millisecond}
	s := NewScheduler(refresher, "@every 1h", time.Second, zap.NewNop())

	require.NoError(t, s.Start())
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&refresher.started) == 1
	}, time.Second, time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.finished))
}

type panickingRefresher struct{}

func (panickingRefresher) RefreshForecast(ctx context.Context) ([]byte, error) {
	panic("decoder exploded")
}

func TestScheduler_PanicIsRecoveredAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewScheduler(panickingRefresher{}, "@every 1h", time.Second, zap.New(core))

	require.NoError(t, s.Start())
	s.Stop()

	panics := logs.FilterMessage("cron: panic").All()
	require.Len(t, panics, 1)
	assert.Equal(t, zapcore.ErrorLevel, panics[0].Level)
	assert.Contains(t, panics[0].ContextMap()["error"], "decoder exploded")
}
