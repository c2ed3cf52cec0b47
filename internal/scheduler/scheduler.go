package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"newsposter/internal/domain"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
)

var ErrNotStarted = errors.New("scheduler is not started")

// Cycler runs one news cycle.
type Cycler interface {
	Run(ctx context.Context) domain.CycleResult
}

// Scheduler runs a Cycler once on Start and then every interval. Cycles
// never overlap: a tick that fires while a cycle is running is skipped.
type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	cycler   Cycler
	interval time.Duration
	entryID  cron.EntryID
	fatal    chan error
	wg       sync.WaitGroup
	log      *slog.Logger
}

func New(ctx context.Context, cycler Cycler, interval time.Duration, log *slog.Logger) *Scheduler {
	s := &Scheduler{
		ctx:      ctx,
		cycler:   cycler,
		interval: interval,
		fatal:    make(chan error, 1),
		log:      log,
	}

	s.cron = cron.New(
		cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)),
		cron.WithLogger(cronLogger{log: log}),
		cron.WithChain(
			s.recoverToFatal,
			cron.SkipIfStillRunning(cronLogger{log: log}),
		),
	)

	return s
}

// Start schedules the periodic cycle and triggers the first one right away.
func (s *Scheduler) Start() error {
	if s.interval < time.Second {
		return fmt.Errorf("interval is too short (interval = %s)", s.interval)
	}

	s.entryID = s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(s.runCycle))
	s.cron.Start()

	s.log.InfoContext(s.ctx, "Scheduler is started",
		"interval", s.interval.String(),
		"nextRun", s.cron.Entry(s.entryID).Next)

	return s.RunNow()
}

// RunNow triggers a cycle outside of the schedule. It is skipped if a
// cycle is already running.
func (s *Scheduler) RunNow() error {
	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return ErrNotStarted
	}

	s.wg.Go(entry.WrappedJob.Run)

	return nil
}

// Stop prevents new cycles and waits for the running one to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// Fatal reports a panic recovered from a cycle.
func (s *Scheduler) Fatal() <-chan error {
	return s.fatal
}

func (s *Scheduler) runCycle() {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	result := s.cycler.Run(s.ctx)

	s.log.DebugContext(s.ctx, "Cycle is finished",
		"posted", result.Posted,
		"interrupted", result.Interrupted,
		"nextRun", s.cron.Entry(s.entryID).Next)
}

func (s *Scheduler) recoverToFatal(job cron.Job) cron.Job {
	return cron.FuncJob(func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			err := fmt.Errorf("cycle panicked: %v", r)
			s.log.ErrorContext(s.ctx, "Cycle panicked",
				"error", err)

			select {
			case s.fatal <- err:
			default:
			}
		}()

		job.Run()
	})
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("Cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("Cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
