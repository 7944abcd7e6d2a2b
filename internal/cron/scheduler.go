package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry is a registered job plus the guard that keeps its runs from
// overlapping.
type entry struct {
	job  Job
	busy sync.Mutex
}

// Scheduler runs registered jobs on their cron schedules. A tick that
// arrives while the previous run of the same job is still going is skipped.
type Scheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []*entry
	byName  map[string]*entry
	hook    RunHook
	runner  *cron.Cron
	runCtx  context.Context
	stopRun context.CancelFunc
}

// NewScheduler returns an empty scheduler. A nil logger means slog.Default().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger.With("component", "cron"),
		byName: make(map[string]*entry),
		hook:   func(string, error) {},
	}
}

// OnRun sets the hook told about every finished run.
func (s *Scheduler) OnRun(h RunHook) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.hook = h
	s.mu.Unlock()
}

// RegisterJob adds j. Names must be unique; jobs added after Start are not
// scheduled until the next Start.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byName[j.Name()]; dup {
		return fmt.Errorf("cron: duplicate job name %q", j.Name())
	}
	e := &entry{job: j}
	s.byName[j.Name()] = e
	s.entries = append(s.entries, e)
	return nil
}

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Start parses every schedule with the standard five-field parser and starts
// ticking. Nothing is scheduled if any expression is invalid.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runner := cron.New()
	ctx, cancel := context.WithCancel(context.Background())
	for _, e := range s.entries {
		if _, err := runner.AddFunc(e.job.Schedule(), func() { s.runJob(ctx, e) }); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", e.job.Name(), err)
		}
	}

	s.runner, s.runCtx, s.stopRun = runner, ctx, cancel
	runner.Start()
	s.logger.Info("scheduler started", "jobs", len(s.entries))
	return nil
}

// Trigger runs the named job now, honouring the overlap guard. It returns
// false when the job is unknown or the scheduler is not running.
func (s *Scheduler) Trigger(name string) bool {
	s.mu.Lock()
	e, ctx := s.byName[name], s.runCtx
	s.mu.Unlock()
	if e == nil || ctx == nil {
		return false
	}
	s.runJob(ctx, e)
	return true
}

func (s *Scheduler) runJob(ctx context.Context, e *entry) {
	name := e.job.Name()
	if !e.busy.TryLock() {
		s.logger.Warn("previous run still in progress, skipping", "job", name)
		return
	}
	defer e.busy.Unlock()

	s.logger.Debug("running job", "job", name)
	err := e.job.Run(ctx)
	if err != nil {
		s.logger.Error("job run failed", "job", name, "error", err)
	}

	s.mu.Lock()
	hook := s.hook
	s.mu.Unlock()
	hook(name, err)
}

// Stop cancels the context of running jobs and waits for them to return.
// Calling it again is a no-op.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	runner, cancel := s.runner, s.stopRun
	s.runner, s.runCtx, s.stopRun = nil, nil, nil
	s.mu.Unlock()

	if runner == nil {
		return nil
	}
	cancel()
	<-runner.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}
