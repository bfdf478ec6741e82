package backup

import (
	"context"
	"sync"
	"time"

	"rollbook/internal/model"
)

// Reference cadence: a tick every 6 hours, plus one prompt first backup
// shortly after start so a fresh session doesn't wait a full period.
const (
	DefaultInterval     = 6 * time.Hour
	DefaultInitialDelay = 5 * time.Second
)

// PullFunc returns the current live dataset. The scheduler pulls on every
// tick instead of holding a dataset reference, so ticks never see stale data.
type PullFunc func() model.Dataset

// Scheduler drives recurring backups. At most one timer goroutine is live per
// instance; Start is an idempotent restart and Stop a safe no-op when idle.
// An in-flight tick is never cancelled; Stop only prevents future ticks.
type Scheduler struct {
	local  *LocalStore
	remote *RemoteStore
	drive  Drive
	logger Logger
	clock  Clock

	interval     time.Duration
	initialDelay time.Duration

	mu   sync.Mutex // guards stop/done
	stop chan struct{}
	done chan struct{}

	tickMu sync.Mutex // held for the duration of a tick; overlap is skipped
}

// NewScheduler creates a Scheduler. Non-positive durations fall back to the
// package defaults.
func NewScheduler(local *LocalStore, remote *RemoteStore, drive Drive, logger Logger, clock Clock, interval, initialDelay time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	return &Scheduler{
		local:        local,
		remote:       remote,
		drive:        drive,
		logger:       logger,
		clock:        clock,
		interval:     interval,
		initialDelay: initialDelay,
	}
}

// Start cancels any running timer and begins a new recurring cycle: one
// deferred initial tick, then one tick per interval. Each tick pulls the
// dataset, snapshots it, saves locally, and saves remotely when a session is
// active. Tick failures are logged and never stop future ticks.
func (s *Scheduler) Start(pull PullFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done
	go s.run(pull, stop, done)

	s.logger.Info("automatic backup started", "interval", s.interval)
}

// Stop cancels the timer and waits for the loop goroutine to exit. An
// in-flight tick finishes first. No-op when the scheduler is not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
	s.logger.Info("automatic backup stopped")
}

func (s *Scheduler) run(pull PullFunc, stop, done chan struct{}) {
	defer close(done)

	initial := time.NewTimer(s.initialDelay)
	defer initial.Stop()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-initial.C:
			s.Tick(pull)
		case <-ticker.C:
			s.Tick(pull)
		}
	}
}

// Tick runs one backup cycle. Exported so a manual "backup now" action shares
// the same serialization as the timer: if a cycle is already in flight the
// tick is dropped rather than queued, which keeps two same-day local writes
// from racing.
func (s *Scheduler) Tick(pull PullFunc) {
	if !s.tickMu.TryLock() {
		s.logger.Warn("backup tick skipped, previous cycle still running")
		return
	}
	defer s.tickMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("backup tick panicked", "panic", r)
		}
	}()

	snap := BuildSnapshot(pull(), s.clock)

	if err := s.local.Save(snap); err != nil {
		s.logger.Error("scheduled local backup failed", "error", err)
	}

	if s.drive.IsSignedIn() {
		if !s.remote.Save(context.Background(), snap) {
			s.logger.Warn("scheduled remote backup failed")
		}
	}
}
