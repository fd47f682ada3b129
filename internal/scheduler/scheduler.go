package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ForecastRefresher is the part of the upstream service the scheduler drives.
type ForecastRefresher interface {
	RefreshForecast(ctx context.Context) ([]byte, error)
}

// Scheduler keeps the cached BMKG forecast warm on a cron schedule.
type Scheduler struct {
	refresher ForecastRefresher
	logger    *zap.Logger
	spec      string
	timeout   time.Duration
	cron      *cron.Cron
	job       cron.Job
	entryID   cron.EntryID
	inflight  sync.WaitGroup

	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	lastErr  error
	runCount int
}

func NewScheduler(refresher ForecastRefresher, spec string, timeout time.Duration, logger *zap.Logger) *Scheduler {
	cronLog := zapCronLogger{logger: logger.Sugar()}

	s := &Scheduler{
		refresher: refresher,
		logger:    logger,
		spec:      spec,
		timeout:   timeout,
		cron:      cron.New(cron.WithLogger(cronLog)),
	}
	// The startup run and the cron runs share one wrapped job, so they never
	// overlap and both recover from panics.
	s.job = cron.NewChain(
		cron.Recover(cronLog),
		cron.SkipIfStillRunning(cronLog),
	).Then(cron.FuncJob(s.runRefresh))
	return s
}

// zapCronLogger routes cron's own messages (including recovered panics) to zap.
type zapCronLogger struct {
	logger *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}

// Start registers the refresh job, runs it once immediately and starts the
// cron loop. An empty schedule disables the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.spec == "" {
		return nil
	}

	id, err := s.cron.AddJob(s.spec, s.job)
	if err != nil {
		return err
	}
	s.entryID = id
	s.running = true

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.job.Run()
	}()
	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", s.cron.Entry(id).Next))
	return nil
}

func (s *Scheduler) runRefresh() {
	startTime := time.Now()
	s.logger.Debug("Refreshing weather forecast")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.refresher.RefreshForecast(ctx)

	s.mu.Lock()
	s.lastRun = startTime
	s.lastErr = err
	s.runCount++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled forecast refresh failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Scheduled forecast refresh completed",
		zap.Duration("duration", time.Since(startTime)))
}

// Stop halts the cron loop and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.inflight.Wait()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":   s.running,
		"schedule":  s.spec,
		"last_run":  s.lastRun,
		"run_count": s.runCount,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}
