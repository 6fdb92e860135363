package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// BroadcastRequest payload.
type BroadcastRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Audience string `json:"audience"`
	Type     string `json:"type"`
}

// PreferencesRequest payload. Omitted flags keep their current value.
type PreferencesRequest struct {
	Email         *bool `json:"email"`
	SMS           *bool `json:"sms"`
	Push          *bool `json:"push"`
	StatusUpdates *bool `json:"statusUpdates"`
	Broadcasts    *bool `json:"broadcasts"`
}

// NotificationResponse response.
type NotificationResponse struct {
	ID                 string                  `json:"id"`
	Type               domain.NotificationType `json:"type"`
	Title              string                  `json:"title"`
	Message            string                  `json:"message"`
	Timestamp          time.Time               `json:"timestamp"`
	IsRead             bool                    `json:"is_read"`
	Audience           domain.Audience         `json:"audience"`
	RelatedComplaintID string                  `json:"related_complaint_id,omitempty"`
}

// Apply overlays the provided flags on current.
func (r PreferencesRequest) Apply(current domain.NotificationPreferences) domain.NotificationPreferences {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&current.Email, r.Email)
	set(&current.SMS, r.SMS)
	set(&current.Push, r.Push)
	set(&current.StatusUpdates, r.StatusUpdates)
	set(&current.Broadcasts, r.Broadcasts)
	return current
}

// NewNotificationList maps notifications for output.
func NewNotificationList(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NewNotificationResponse(n))
	}
	return out
}

// NewNotificationResponse maps a notification for output.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                 n.ID,
		Type:               n.Type,
		Title:              n.Title,
		Message:            n.Message,
		Timestamp:          n.Timestamp,
		IsRead:             n.IsRead,
		Audience:           n.Audience,
		RelatedComplaintID: n.RelatedComplaintID,
	}
}
