package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventFeedbackSubmitted      EventType = "feedback_submitted"
	EventUserLoggedIn           EventType = "user_logged_in"
)

// Actor encapsulates actor metadata for an event. System-driven changes carry no user.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	System bool        `json:"system,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id,omitempty"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Title       string                   `json:"title"`
	Category    domain.Category          `json:"category"`
	Priority    domain.ComplaintPriority `json:"priority"`
	SubmittedBy string                   `json:"submitted_by"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	Title       string                 `json:"title"`
	OldStatus   domain.ComplaintStatus `json:"old_status"`
	NewStatus   domain.ComplaintStatus `json:"new_status"`
	SubmittedBy string                 `json:"submitted_by"`
}

// FeedbackSubmittedPayload payload.
type FeedbackSubmittedPayload struct {
	Rating int `json:"rating"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Name string `json:"name"`
}
