package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// NotificationKind names what triggered a notification.
type NotificationKind string

const (
	KindStatusUpdate  NotificationKind = "status-update"
	KindNewSubmission NotificationKind = "new-submission"
	KindBroadcast     NotificationKind = "broadcast"
	KindSystemAlert   NotificationKind = "system-alert"
	KindWelcome       NotificationKind = "welcome"
)

// recordType maps a kind onto the stored notification type. New submissions are
// stored as system alerts for administrators.
func (k NotificationKind) recordType() (domain.NotificationType, bool) {
	switch k {
	case KindStatusUpdate:
		return domain.NotificationStatusUpdate, true
	case KindNewSubmission, KindSystemAlert:
		return domain.NotificationSystemAlert, true
	case KindBroadcast:
		return domain.NotificationBroadcast, true
	case KindWelcome:
		return domain.NotificationWelcome, true
	}
	return "", false
}

// NotificationEvent asks the dispatcher to record and deliver one notification.
type NotificationEvent struct {
	Kind               NotificationKind
	Title              string
	Message            string
	Audience           domain.Audience
	RelatedComplaintID string
}

// BroadcastInput is an administrator announcement.
type BroadcastInput struct {
	Title    string                  `json:"title" validate:"required,max=200"`
	Message  string                  `json:"message" validate:"required,max=2000"`
	Audience domain.Audience         `json:"audience" validate:"required"`
	Type     domain.NotificationType `json:"type" validate:"omitempty,oneof=broadcast system-alert"`
}

// NotificationService turns lifecycle events and announcements into notification
// records and runs the stub delivery channels.
type NotificationService struct {
	store      *repository.RecordStore
	prefs      *repository.PreferenceStore
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      scheduler.Clock
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig

	entropyMu sync.Mutex
	entropy   io.Reader
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Store       *repository.RecordStore
	Preferences *repository.PreferenceStore
	Users       repository.UserRepository
	Dispatcher  events.Dispatcher
	Clock       scheduler.Clock
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Config      config.NotificationConfig
}

var errNoChange = errors.New("no change")

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	n := &NotificationService{
		store:      deps.Store,
		prefs:      deps.Preferences,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		cfg:        deps.Config,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
	if n.clock == nil {
		n.clock = scheduler.SystemClock()
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintSubmitted, n.handleComplaintSubmitted)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
	n.dispatcher.Subscribe(events.EventFeedbackSubmitted, n.handleFeedbackSubmitted)
	n.dispatcher.Subscribe(events.EventUserLoggedIn, n.handleUserLoggedIn)
}

func (n *NotificationService) handleComplaintSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	_, err := n.Dispatch(ctx, NotificationEvent{
		Kind:               KindNewSubmission,
		Title:              "New complaint submitted",
		Message:            fmt.Sprintf("%s (%s, %s priority) was filed as %s.", payload.Title, payload.Category, payload.Priority, event.ComplaintID),
		Audience:           domain.AudienceRole(domain.RoleAdmin),
		RelatedComplaintID: event.ComplaintID,
	})
	return err
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	_, err := n.Dispatch(ctx, NotificationEvent{
		Kind:               KindStatusUpdate,
		Title:              "Complaint status updated",
		Message:            fmt.Sprintf("Complaint %s updated from %s to %s.", event.ComplaintID, payload.OldStatus, payload.NewStatus),
		Audience:           domain.AudienceUser(payload.SubmittedBy),
		RelatedComplaintID: event.ComplaintID,
	})
	return err
}

func (n *NotificationService) handleFeedbackSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.FeedbackSubmittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	_, err := n.Dispatch(ctx, NotificationEvent{
		Kind:               KindSystemAlert,
		Title:              "Feedback received",
		Message:            fmt.Sprintf("Complaint %s was rated %d/5 by its submitter.", event.ComplaintID, payload.Rating),
		Audience:           domain.AudienceRole(domain.RoleStaff),
		RelatedComplaintID: event.ComplaintID,
	})
	return err
}

func (n *NotificationService) handleUserLoggedIn(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserLoggedInPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	_, err := n.Dispatch(ctx, NotificationEvent{
		Kind:     KindWelcome,
		Title:    "Welcome back",
		Message:  fmt.Sprintf("Welcome back, %s.", payload.Name),
		Audience: domain.AudienceUser(event.Actor.UserID),
	})
	return err
}

// Dispatch records a notification and runs delivery for user-targeted ones.
func (n *NotificationService) Dispatch(ctx context.Context, event NotificationEvent) (*domain.Notification, error) {
	kind, ok := event.Kind.recordType()
	if !ok {
		return nil, apperrors.NewValidationError("kind is invalid", map[string]any{"kind": string(event.Kind)})
	}
	title := strings.TrimSpace(event.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"title": "required"})
	}
	if strings.TrimSpace(string(event.Audience)) == "" {
		return nil, apperrors.NewValidationError("audience is required", map[string]any{"audience": "required"})
	}

	now := n.clock.Now()
	record := domain.Notification{
		ID:                 n.newID(now),
		Type:               kind,
		Title:              title,
		Message:            strings.TrimSpace(event.Message),
		Timestamp:          now,
		Audience:           event.Audience,
		RelatedComplaintID: event.RelatedComplaintID,
	}
	err := n.store.Update(ctx, func(st *repository.State) error {
		st.Notifications = append(st.Notifications, record)
		return nil
	})
	if err != nil && !apperrors.IsPersistence(err) {
		return nil, err
	}

	n.metrics.RecordNotification(string(event.Kind))
	n.logger.Info("notification recorded",
		zap.String("notification_id", record.ID),
		zap.String("kind", string(event.Kind)),
		zap.String("audience", string(record.Audience)))
	n.deliver(ctx, event.Kind, record)
	return &record, err
}

// AudienceMatches reports whether user is addressed by notification.
func AudienceMatches(notification domain.Notification, user domain.User) bool {
	switch notification.Audience {
	case domain.AudienceAll, domain.AudienceUser(user.ID), domain.AudienceRole(user.Role):
		return true
	}
	return false
}

// ListFor returns the notifications addressed to user, newest first.
func (n *NotificationService) ListFor(_ context.Context, user domain.User, unreadOnly bool) []domain.Notification {
	out := []domain.Notification{}
	n.store.View(func(st repository.State) {
		for _, item := range st.Notifications {
			if !AudienceMatches(item, user) {
				continue
			}
			if unreadOnly && item.IsRead {
				continue
			}
			out = append(out, item)
		}
	})
	slices.SortStableFunc(out, func(a, b domain.Notification) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

// MarkRead flags a notification addressed to user as read. Unknown ids, foreign
// notifications and already read ones are left alone without error.
func (n *NotificationService) MarkRead(ctx context.Context, user domain.User, id string) error {
	err := n.store.Update(ctx, func(st *repository.State) error {
		item := st.Notification(id)
		if item == nil || item.IsRead || !AudienceMatches(*item, user) {
			return errNoChange
		}
		item.IsRead = true
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// Broadcast publishes an administrator announcement.
func (n *NotificationService) Broadcast(ctx context.Context, sender domain.User, input BroadcastInput) (*domain.Notification, error) {
	if sender.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only administrators can broadcast")
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Message = strings.TrimSpace(input.Message)
	input.Audience = domain.Audience(strings.TrimSpace(string(input.Audience)))
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	audience, err := n.resolveAudience(ctx, input.Audience)
	if err != nil {
		return nil, err
	}

	kind := KindBroadcast
	if input.Type == domain.NotificationSystemAlert {
		kind = KindSystemAlert
	}
	return n.Dispatch(ctx, NotificationEvent{
		Kind:     kind,
		Title:    input.Title,
		Message:  input.Message,
		Audience: audience,
	})
}

// Preferences returns the delivery flags of user.
func (n *NotificationService) Preferences(ctx context.Context, user domain.User) domain.NotificationPreferences {
	return n.prefs.Get(ctx, user.ID)
}

// UpdatePreferences replaces the delivery flags of user.
func (n *NotificationService) UpdatePreferences(ctx context.Context, user domain.User, prefs domain.NotificationPreferences) error {
	return n.prefs.Set(ctx, user.ID, prefs)
}

// resolveAudience accepts "all", a role name (any case) or a known user id.
func (n *NotificationService) resolveAudience(ctx context.Context, audience domain.Audience) (domain.Audience, error) {
	if strings.EqualFold(string(audience), string(domain.AudienceAll)) {
		return domain.AudienceAll, nil
	}
	if role, err := domain.ParseRole(string(audience)); err == nil {
		return domain.AudienceRole(role), nil
	}
	if n.users != nil {
		if user, err := n.users.GetByID(ctx, string(audience)); err == nil {
			return domain.AudienceUser(user.ID), nil
		}
	}
	return "", apperrors.NewValidationError("audience is invalid", map[string]any{"audience": string(audience)})
}

func (n *NotificationService) deliver(ctx context.Context, kind NotificationKind, record domain.Notification) {
	if n.users == nil || n.prefs == nil {
		return
	}
	user, err := n.users.GetByID(ctx, string(record.Audience))
	if err != nil {
		return
	}
	prefs := n.prefs.Get(ctx, user.ID)
	switch kind {
	case KindStatusUpdate:
		if !prefs.StatusUpdates {
			return
		}
	case KindBroadcast:
		if !prefs.Broadcasts {
			return
		}
	}
	if prefs.Email {
		n.sendEmailStub(user, record)
	}
	if prefs.SMS {
		n.sendSMSStub(user, record)
	}
	if prefs.Push {
		n.sendPushStub(user, record)
	}
}

func (n *NotificationService) sendEmailStub(user *domain.User, record domain.Notification) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || user.Email == "" {
		return
	}
	n.logger.Debug("sendEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", user.Email),
		zap.String("notification_id", record.ID),
		zap.String("subject", record.Title))
}

func (n *NotificationService) sendSMSStub(user *domain.User, record domain.Notification) {
	if strings.TrimSpace(n.cfg.SMSSender) == "" || user.Phone == "" {
		return
	}
	n.logger.Debug("sendSMSStub",
		zap.String("sender", n.cfg.SMSSender),
		zap.String("to", user.Phone),
		zap.String("notification_id", record.ID))
}

func (n *NotificationService) sendPushStub(user *domain.User, record domain.Notification) {
	n.logger.Debug("sendPushStub",
		zap.String("user_id", user.ID),
		zap.String("notification_id", record.ID),
		zap.String("title", record.Title))
}

func (n *NotificationService) newID(at time.Time) string {
	n.entropyMu.Lock()
	defer n.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), n.entropy).String()
}
