package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled batch.
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	job        Job
	spec       string
	logger     *zap.Logger
	runOnStart bool

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	manual  sync.WaitGroup
	lastRun time.Time
	lastErr error
	runs    int
}

// NewScheduler validates spec (standard five-field cron or a descriptor such
// as "@every 30m").
func NewScheduler(spec string, job Job, runOnStart bool, logger *zap.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	return &Scheduler{
		job:        job,
		spec:       spec,
		logger:     logger,
		runOnStart: runOnStart,
	}, nil
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	cl := cronLogger{s.logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	id, err := c.AddFunc(s.spec, s.runJob)
	if err != nil {
		return fmt.Errorf("scheduling batch: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = c
	s.entryID = id
	s.running = true
	c.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.spec),
		zap.Time("next_run", c.Entry(id).Next))

	if s.runOnStart {
		s.trigger()
	}

	return nil
}

// RunNow triggers a run outside the schedule. It is skipped like a tick when
// a run is already in progress.
func (s *Scheduler) RunNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.logger.Info("Manually triggering batch")
	s.trigger()
}

// trigger runs the wrapped job off-schedule. Callers hold s.mu.
func (s *Scheduler) trigger() {
	job := s.cron.Entry(s.entryID).WrappedJob
	s.manual.Add(1)
	go func() {
		defer s.manual.Done()
		job.Run()
	}()
}

// Stop stops scheduling and waits for a running batch. If ctx ends first the
// batch's context is cancelled and Stop returns ctx.Err().
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	cronDone := c.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.manual.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

func (s *Scheduler) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.spec,
		"last_run": s.lastRun,
		"runs":     s.runs,
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}

func (s *Scheduler) runJob() {
	s.mu.Lock()
	s.lastRun = time.Now()
	ctx := s.ctx
	s.mu.Unlock()

	startTime := time.Now()
	s.logger.Info("Starting scheduled batch", zap.Time("start_time", startTime))

	err := s.job(ctx)

	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled batch failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return
	}
	s.logger.Info("Scheduled batch completed",
		zap.Duration("duration", time.Since(startTime)))
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
