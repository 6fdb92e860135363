// Package worker holds background drivers that react to domain events.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Transitioner moves a complaint to a new status.
type Transitioner interface {
	Transition(ctx context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error)
}

// ProgressionWorker walks freshly submitted complaints through InProgress and Resolved
// on a timer, the way the demo deployment shows the lifecycle without staff input.
type ProgressionWorker struct {
	complaints Transitioner
	scheduler  *scheduler.Scheduler
	cfg        config.DemoConfig
	logger     *zap.Logger

	mu    sync.Mutex
	tasks map[string][]*scheduler.Task
}

// NewProgressionWorker builds the worker.
func NewProgressionWorker(complaints Transitioner, sched *scheduler.Scheduler, cfg config.DemoConfig, logger *zap.Logger) *ProgressionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionWorker{
		complaints: complaints,
		scheduler:  sched,
		cfg:        cfg,
		logger:     logger,
		tasks:      make(map[string][]*scheduler.Task),
	}
}

// StartProgressionWorker subscribes the worker to submissions when auto progression is on.
func StartProgressionWorker(w *ProgressionWorker, dispatcher events.Dispatcher) {
	if w == nil || dispatcher == nil || !w.cfg.AutoProgress {
		return
	}
	dispatcher.Subscribe(events.EventComplaintSubmitted, w.handleComplaintSubmitted)
	w.logger.Info("auto progression enabled",
		zap.Duration("in_progress_after", w.cfg.InProgressAfter),
		zap.Duration("resolved_after", w.cfg.ResolvedAfter))
}

func (w *ProgressionWorker) handleComplaintSubmitted(_ context.Context, event events.Event) error {
	w.Schedule(event.ComplaintID)
	return nil
}

// Schedule queues both automatic transitions for a complaint.
func (w *ProgressionWorker) Schedule(complaintID string) {
	w.scheduleStep(complaintID, domain.StatusInProgress, w.cfg.InProgressAfter)
	w.scheduleStep(complaintID, domain.StatusResolved, w.cfg.ResolvedAfter)
}

func (w *ProgressionWorker) scheduleStep(complaintID string, status domain.ComplaintStatus, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var task *scheduler.Task
	task = w.scheduler.Schedule("progress:"+complaintID+":"+status.String(), delay, func() {
		w.mu.Lock()
		w.forgetLocked(complaintID, task)
		w.mu.Unlock()
		w.advance(complaintID, status)
	})
	if task != nil {
		w.tasks[complaintID] = append(w.tasks[complaintID], task)
	}
}

func (w *ProgressionWorker) advance(complaintID string, status domain.ComplaintStatus) {
	_, err := w.complaints.Transition(context.Background(), complaintID, status)
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		w.logger.Info("complaint vanished before automatic transition",
			zap.String("complaint_id", complaintID), zap.String("status", status.String()))
	default:
		w.logger.Warn("automatic transition failed",
			zap.String("complaint_id", complaintID), zap.String("status", status.String()), zap.Error(err))
	}
}

func (w *ProgressionWorker) forgetLocked(complaintID string, task *scheduler.Task) {
	remaining := w.tasks[complaintID][:0]
	for _, t := range w.tasks[complaintID] {
		if t != task {
			remaining = append(remaining, t)
		}
	}
	if len(remaining) == 0 {
		delete(w.tasks, complaintID)
		return
	}
	w.tasks[complaintID] = remaining
}

// Pending returns the number of automatic transitions still queued for a complaint.
func (w *ProgressionWorker) Pending(complaintID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tasks[complaintID])
}

// Stop cancels every queued transition.
func (w *ProgressionWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, tasks := range w.tasks {
		for _, task := range tasks {
			task.Cancel()
		}
		delete(w.tasks, id)
	}
}
