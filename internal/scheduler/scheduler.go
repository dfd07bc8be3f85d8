package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"MomentumRank/internal/domain/models"
	applogger "MomentumRank/pkg/logger"
)

// Calculator is the part of the momentum service the refresh job needs.
type Calculator interface {
	Calculate(ctx context.Context, params models.CalculateParams) (*models.Calculation, error)
}

// Scheduler recomputes the default universe on a cron schedule so the
// result cache stays warm.
type Scheduler struct {
	cron    *cron.Cron
	calc    Calculator
	l       *applogger.Logger
	timeout time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler. timeout bounds one refresh; zero means no bound.
func New(calc Calculator, l *applogger.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		calc:    calc,
		l:       l,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds the refresh job. spec is a standard five-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.refresh); err != nil {
		return fmt.Errorf("register refresh job %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.info("scheduler started", applogger.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels a running refresh and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.info("scheduler stopped")
}

// RunNow executes the refresh job immediately.
func (s *Scheduler) RunNow() {
	s.refresh()
}

// refresh skips a tick when the previous one is still running.
func (s *Scheduler) refresh() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.warn("refresh skipped, previous run still in progress")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	calc, err := s.calc.Calculate(ctx, models.CalculateParams{UseCache: false})
	if err != nil {
		if s.l != nil {
			s.l.Error("scheduled refresh failed", applogger.Error(err))
		}
		return
	}
	s.info("scheduled refresh done",
		applogger.String("run_id", calc.Result.RunID),
		applogger.Date("last_date", calc.Result.LastDate),
		applogger.Int("ranked", len(calc.Result.Today)),
		applogger.Duration("elapsed_ms", time.Since(start)),
	)
}

func (s *Scheduler) info(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Info(msg, fields...)
	}
}

func (s *Scheduler) warn(msg string, fields ...applogger.Field) {
	if s.l != nil {
		s.l.Warn(msg, fields...)
	}
}
