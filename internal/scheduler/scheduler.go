package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
)

// Scheduler tracks deferred calls so they can be cancelled individually or all at once.
type Scheduler struct {
	clock   Clock
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*Task
	stopped bool
}

// Task is a handle to one deferred call.
type Task struct {
	id        uint64
	name      string
	scheduler *Scheduler
	timer     Timer
}

// New builds a scheduler on top of clock.
func New(clock Clock, logger *zap.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		pending: make(map[uint64]*Task),
	}
}

// Clock returns the clock the scheduler runs on.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// Schedule runs fn once after delay. After Stop it returns nil and fn never runs.
func (s *Scheduler) Schedule(name string, delay time.Duration, fn func()) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.metrics.RecordScheduledTask("rejected")
		return nil
	}
	s.nextID++
	task := &Task{id: s.nextID, name: name, scheduler: s}
	s.pending[task.id] = task
	task.timer = s.clock.AfterFunc(delay, func() { s.fire(task, fn) })
	s.logger.Debug("task scheduled", zap.String("task", name), zap.Duration("delay", delay))
	return task
}

func (s *Scheduler) fire(task *Task, fn func()) {
	s.mu.Lock()
	if _, ok := s.pending[task.id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, task.id)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", zap.String("task", task.name), zap.Any("panic", r))
		}
	}()
	s.metrics.RecordScheduledTask("fired")
	fn()
}

// Cancel stops the task if it has not fired yet and reports whether it did.
func (t *Task) Cancel() bool {
	if t == nil {
		return false
	}
	s := t.scheduler
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(t)
}

// Name returns the label given at scheduling time.
func (t *Task) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

func (s *Scheduler) cancelLocked(t *Task) bool {
	if _, ok := s.pending[t.id]; !ok {
		return false
	}
	delete(s.pending, t.id)
	if t.timer != nil {
		t.timer.Stop()
	}
	s.metrics.RecordScheduledTask("cancelled")
	return true
}

// Pending returns the number of tasks waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, task := range s.pending {
		s.cancelLocked(task)
	}
	s.logger.Debug("scheduler stopped")
}
