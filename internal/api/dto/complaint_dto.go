package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    int    `json:"category"`
	Priority    int    `json:"priority"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status int `json:"status"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ComplaintResponse carries a complaint with display names for its enumerations.
type ComplaintResponse struct {
	ID                    string                   `json:"id"`
	Title                 string                   `json:"title"`
	Description           string                   `json:"description"`
	Category              domain.Category          `json:"category"`
	CategoryName          string                   `json:"category_name"`
	Priority              domain.ComplaintPriority `json:"priority"`
	PriorityName          string                   `json:"priority_name"`
	Status                domain.ComplaintStatus   `json:"status"`
	StatusName            string                   `json:"status_name"`
	SubmittedBy           string                   `json:"submitted_by"`
	SubmittedAt           time.Time                `json:"submitted_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
	TargetResolutionHours float64                  `json:"target_resolution_hours"`
	ResolutionTimeHours   *float64                 `json:"resolution_time_hours,omitempty"`
}

// FeedbackResponse response.
type FeedbackResponse struct {
	ComplaintID string    `json:"complaint_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewComplaintResponse maps a complaint for output.
func NewComplaintResponse(c domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:                    c.ID,
		Title:                 c.Title,
		Description:           c.Description,
		Category:              c.Category,
		CategoryName:          c.Category.String(),
		Priority:              c.Priority,
		PriorityName:          c.Priority.String(),
		Status:                c.Status,
		StatusName:            c.Status.String(),
		SubmittedBy:           c.SubmittedBy,
		SubmittedAt:           c.SubmittedAt,
		UpdatedAt:             c.UpdatedAt,
		TargetResolutionHours: c.Priority.TargetResolution().Hours(),
		ResolutionTimeHours:   c.ResolutionTimeHours,
	}
}

// NewComplaintList maps complaints for output.
func NewComplaintList(items []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewComplaintResponse(c))
	}
	return out
}

// NewFeedbackResponse maps feedback for output.
func NewFeedbackResponse(f domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ComplaintID: f.ComplaintID,
		Rating:      f.Rating,
		Comment:     f.Comment,
		SubmittedBy: f.SubmittedBy,
		SubmittedAt: f.SubmittedAt,
	}
}
