package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/query"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const complaintIDPrefix = "COMP"

// ComplaintService owns the complaint lifecycle: submission, status changes and feedback.
type ComplaintService struct {
	store      *repository.RecordStore
	dispatcher events.Dispatcher
	clock      scheduler.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	Store      *repository.RecordStore
	Dispatcher events.Dispatcher
	Clock      scheduler.Clock
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// SubmitInput describes a new complaint.
type SubmitInput struct {
	Title       string                   `json:"title" validate:"required"`
	Description string                   `json:"description" validate:"required"`
	Category    domain.Category          `json:"category" validate:"required,complaint_category"`
	Priority    domain.ComplaintPriority `json:"priority" validate:"required,complaint_priority"`
	SubmitterID string                   `json:"submittedBy" validate:"required"`
}

// FeedbackInput describes a rating for a resolved complaint.
type FeedbackInput struct {
	ComplaintID string `json:"complaintId" validate:"required"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
	Comment     string `json:"comment" validate:"max=1000"`
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	svc := &ComplaintService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if svc.clock == nil {
		svc.clock = scheduler.SystemClock()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Submit validates input and records a new complaint in the Submitted state.
func (s *ComplaintService) Submit(ctx context.Context, input SubmitInput) (*domain.Complaint, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.SubmitterID = strings.TrimSpace(input.SubmitterID)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var created domain.Complaint
	err := s.store.Update(ctx, func(st *repository.State) error {
		created = domain.Complaint{
			ID:          nextComplaintID(st, now.UnixMilli()),
			Title:       input.Title,
			Description: input.Description,
			Category:    input.Category,
			Priority:    input.Priority,
			Status:      domain.StatusSubmitted,
			SubmittedBy: input.SubmitterID,
			SubmittedAt: now,
			UpdatedAt:   now,
		}
		st.Complaints = append(st.Complaints, created)
		return nil
	})
	if err != nil && !apperrors.IsPersistence(err) {
		return nil, err
	}

	s.metrics.RecordSubmission(created.Category.String())
	s.logger.Info("complaint submitted",
		zap.String("complaint_id", created.ID),
		zap.String("category", created.Category.String()),
		zap.String("priority", created.Priority.String()))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: created.ID,
		Actor:       events.Actor{UserID: created.SubmittedBy},
		Payload: events.ComplaintSubmittedPayload{
			Title:       created.Title,
			Category:    created.Category,
			Priority:    created.Priority,
			SubmittedBy: created.SubmittedBy,
		},
	})
	return &created, err
}

// Transition moves a complaint to status on behalf of the system. Any status may
// follow any other; the resolution time is recorded the first time Resolved is reached.
func (s *ComplaintService) Transition(ctx context.Context, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	return s.transition(ctx, events.Actor{System: true}, id, status)
}

// UpdateStatus is the user-facing transition. Only roles allowed to change status may call it.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor domain.User, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	if !actor.Role.CanChangeStatus() {
		return nil, apperrors.NewForbidden(fmt.Sprintf("role %s cannot change complaint status", actor.Role))
	}
	return s.transition(ctx, events.Actor{UserID: actor.ID, Role: actor.Role}, id, status)
}

func (s *ComplaintService) transition(ctx context.Context, actor events.Actor, id string, status domain.ComplaintStatus) (*domain.Complaint, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status is invalid", map[string]any{"status": int(status)})
	}

	now := s.clock.Now()
	var (
		updated   domain.Complaint
		oldStatus domain.ComplaintStatus
	)
	err := s.store.Update(ctx, func(st *repository.State) error {
		c := st.Complaint(id)
		if c == nil {
			return apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		oldStatus = c.Status
		c.Status = status
		c.UpdatedAt = now
		if status == domain.StatusResolved {
			c.MarkResolved(now)
		}
		updated = *c
		return nil
	})
	if err != nil && !apperrors.IsPersistence(err) {
		return nil, err
	}

	s.metrics.RecordTransition(oldStatus.String(), status.String())
	s.logger.Info("complaint status changed",
		zap.String("complaint_id", updated.ID),
		zap.String("from", oldStatus.String()),
		zap.String("to", status.String()),
		zap.Bool("system", actor.System))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: updated.ID,
		Actor:       actor,
		Payload: events.ComplaintStatusChangedPayload{
			Title:       updated.Title,
			OldStatus:   oldStatus,
			NewStatus:   status,
			SubmittedBy: updated.SubmittedBy,
		},
	})
	return &updated, err
}

// SubmitFeedback records the submitter's rating of a resolved complaint. Each complaint
// takes at most one feedback.
func (s *ComplaintService) SubmitFeedback(ctx context.Context, actor domain.User, input FeedbackInput) (*domain.Feedback, error) {
	input.ComplaintID = strings.TrimSpace(input.ComplaintID)
	input.Comment = strings.TrimSpace(input.Comment)

	now := s.clock.Now()
	var created domain.Feedback
	err := s.store.Update(ctx, func(st *repository.State) error {
		c := st.Complaint(input.ComplaintID)
		if c == nil {
			return apperrors.NewNotFound("complaint", map[string]any{"id": input.ComplaintID})
		}
		if c.Status != domain.StatusResolved {
			return apperrors.NewValidationError("feedback is only accepted for resolved complaints",
				map[string]any{"status": c.Status.String()})
		}
		if c.SubmittedBy != actor.ID {
			return apperrors.NewForbidden("only the submitter can leave feedback")
		}
		if err := validateStruct(input); err != nil {
			return err
		}
		if st.Feedback(c.ID) != nil {
			return apperrors.NewConflict("feedback already submitted", map[string]any{"complaintId": c.ID})
		}
		created = domain.Feedback{
			ComplaintID: c.ID,
			Rating:      input.Rating,
			Comment:     input.Comment,
			SubmittedAt: now,
			SubmittedBy: actor.ID,
		}
		st.Feedbacks = append(st.Feedbacks, created)
		return nil
	})
	if err != nil && !apperrors.IsPersistence(err) {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventFeedbackSubmitted,
		ComplaintID: created.ComplaintID,
		Actor:       events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload:     events.FeedbackSubmittedPayload{Rating: created.Rating},
	})
	return &created, err
}

// Get returns a complaint the actor may read.
func (s *ComplaintService) Get(_ context.Context, actor domain.User, id string) (*domain.Complaint, error) {
	var found *domain.Complaint
	s.store.View(func(st repository.State) {
		found = st.Complaint(id)
	})
	if found == nil {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	if !query.CanView(actor, *found) {
		return nil, apperrors.NewForbidden("complaint belongs to another user")
	}
	return found, nil
}

// FeedbackFor returns the feedback left on a complaint the actor may read.
func (s *ComplaintService) FeedbackFor(ctx context.Context, actor domain.User, complaintID string) (*domain.Feedback, error) {
	if _, err := s.Get(ctx, actor, complaintID); err != nil {
		return nil, err
	}
	var found *domain.Feedback
	s.store.View(func(st repository.State) {
		found = st.Feedback(complaintID)
	})
	if found == nil {
		return nil, apperrors.NewNotFound("feedback", map[string]any{"complaintId": complaintID})
	}
	return found, nil
}

// List returns the actor's visible complaints narrowed by criteria, newest first.
func (s *ComplaintService) List(_ context.Context, actor domain.User, criteria query.Criteria) []domain.Complaint {
	var out []domain.Complaint
	s.store.View(func(st repository.State) {
		out = query.Filter(query.VisibleTo(actor, st.Complaints), criteria)
	})
	return out
}

// Recent returns the actor's n newest visible complaints.
func (s *ComplaintService) Recent(_ context.Context, actor domain.User, n int) []domain.Complaint {
	var out []domain.Complaint
	s.store.View(func(st repository.State) {
		out = query.Recent(query.VisibleTo(actor, st.Complaints), n)
	})
	return out
}

// Statistics counts the actor's visible complaints per status.
func (s *ComplaintService) Statistics(_ context.Context, actor domain.User) query.Statistics {
	var stats query.Statistics
	s.store.View(func(st repository.State) {
		stats = query.Summarize(query.VisibleTo(actor, st.Complaints))
	})
	return stats
}

// Analytics builds the admin reporting view.
func (s *ComplaintService) Analytics(_ context.Context, actor domain.User) (query.Analytics, error) {
	if actor.Role != domain.RoleAdmin {
		return query.Analytics{}, apperrors.NewForbidden("analytics are limited to administrators")
	}
	var report query.Analytics
	s.store.View(func(st repository.State) {
		report = query.Analyze(st.Complaints, st.Feedbacks)
	})
	return report, nil
}

// nextComplaintID derives an id from the millisecond clock, stepping forward until it
// is unused.
func nextComplaintID(st *repository.State, unixMilli int64) string {
	n := unixMilli % 1_000_000
	if n < 0 {
		n = -n
	}
	for {
		id := fmt.Sprintf("%s%06d", complaintIDPrefix, n)
		if st.Complaint(id) == nil {
			return id
		}
		n = (n + 1) % 1_000_000
	}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
