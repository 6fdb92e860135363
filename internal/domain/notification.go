package domain

import "time"

// NotificationType differentiates notification records.
type NotificationType string

const (
	NotificationStatusUpdate NotificationType = "status-update"
	NotificationBroadcast    NotificationType = "broadcast"
	NotificationSystemAlert  NotificationType = "system-alert"
	NotificationWelcome      NotificationType = "welcome"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationStatusUpdate, NotificationBroadcast, NotificationSystemAlert, NotificationWelcome:
		return true
	}
	return false
}

// Audience targets a notification at a user id, a role name or everyone.
type Audience string

// AudienceAll reaches every user.
const AudienceAll Audience = "all"

// AudienceUser targets a single user.
func AudienceUser(userID string) Audience {
	return Audience(userID)
}

// AudienceRole targets every user holding role.
func AudienceRole(role Role) Audience {
	return Audience(role.String())
}

// Notification is an append-only record; only IsRead ever changes.
type Notification struct {
	ID                 string           `json:"id"`
	Type               NotificationType `json:"type"`
	Title              string           `json:"title"`
	Message            string           `json:"message"`
	Timestamp          time.Time        `json:"timestamp"`
	IsRead             bool             `json:"isRead"`
	Audience           Audience         `json:"audience"`
	RelatedComplaintID string           `json:"relatedComplaintId,omitempty"`
}
