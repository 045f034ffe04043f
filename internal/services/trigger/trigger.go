// Package trigger fires the scan cycle on a cron schedule. It is only a
// trigger: single-flight protection lives in the watcher itself, so a
// manual /force_update racing the timer is rejected there, not here.
package trigger

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "coursewatch/pkg/logx"
)

type Config struct {
	// Schedule is a standard five-field cron expression
	// (descriptors like @hourly also work). Default "0 */12 * * *".
	Schedule string
	Timezone string // IANA name, e.g. "Asia/Kolkata"; empty means local
}

type Service struct {
	mu  sync.Mutex
	cfg Config
	log logx.Logger

	parser cron.Parser
	c      *cron.Cron
	job    func(ctx context.Context)

	runCtx    context.Context
	runCancel context.CancelFunc
}

func New(cfg Config, job func(ctx context.Context), log logx.Logger) *Service {
	if strings.TrimSpace(cfg.Schedule) == "" {
		cfg.Schedule = "0 */12 * * *"
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:    cfg,
		log:    log,
		job:    job,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	sched, err := s.parser.Parse(s.cfg.Schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.cfg.Schedule, err)
	}

	loc := time.Local
	if tz := strings.TrimSpace(s.cfg.Timezone); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
		}
	}

	s.runCtx, s.runCancel = context.WithCancel(ctx)
	runCtx := s.runCtx

	c := cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	c.Schedule(sched, cron.FuncJob(func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in scheduled job", logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		s.job(runCtx)
	}))
	c.Start()
	s.c = c

	s.log.Info("trigger started",
		logx.String("schedule", s.cfg.Schedule),
		logx.String("tz", loc.String()),
		logx.Time("next_run", sched.Next(time.Now().In(loc))))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	cancel := s.runCancel
	s.c = nil
	s.runCancel = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	if cancel != nil {
		cancel()
	}
	select {
	case <-c.Stop().Done():
		s.log.Info("trigger stopped")
	case <-ctx.Done():
		s.log.Warn("trigger stop timed out; job still draining")
	}
}
