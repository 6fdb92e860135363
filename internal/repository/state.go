package repository

import (
	"github.com/spec-kit/complaint-service/internal/domain"
)

// State is the application state: every collection the record store owns.
type State struct {
	Complaints    []domain.Complaint
	Feedbacks     []domain.Feedback
	Notifications []domain.Notification
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := State{
		Complaints:    make([]domain.Complaint, len(s.Complaints)),
		Feedbacks:     append(make([]domain.Feedback, 0, len(s.Feedbacks)), s.Feedbacks...),
		Notifications: append(make([]domain.Notification, 0, len(s.Notifications)), s.Notifications...),
	}
	for i, c := range s.Complaints {
		if c.ResolutionTimeHours != nil {
			hours := *c.ResolutionTimeHours
			c.ResolutionTimeHours = &hours
		}
		out.Complaints[i] = c
	}
	return out
}

// Complaint returns a pointer into the collection, or nil. The pointer aliases the
// backing array, so writes through it land in s.
func (s State) Complaint(id string) *domain.Complaint {
	for i := range s.Complaints {
		if s.Complaints[i].ID == id {
			return &s.Complaints[i]
		}
	}
	return nil
}

// Feedback returns the feedback recorded for a complaint, or nil.
func (s State) Feedback(complaintID string) *domain.Feedback {
	for i := range s.Feedbacks {
		if s.Feedbacks[i].ComplaintID == complaintID {
			return &s.Feedbacks[i]
		}
	}
	return nil
}

// Notification returns a pointer into the collection, or nil.
func (s State) Notification(id string) *domain.Notification {
	for i := range s.Notifications {
		if s.Notifications[i].ID == id {
			return &s.Notifications[i]
		}
	}
	return nil
}

func (s *State) normalize() {
	if s.Complaints == nil {
		s.Complaints = []domain.Complaint{}
	}
	if s.Feedbacks == nil {
		s.Feedbacks = []domain.Feedback{}
	}
	if s.Notifications == nil {
		s.Notifications = []domain.Notification{}
	}
	for i := range s.Complaints {
		c := &s.Complaints[i]
		if c.Status == domain.StatusResolved {
			c.MarkResolved(c.UpdatedAt)
		}
	}
}
