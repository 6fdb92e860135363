package domain

import "time"

const (
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// Feedback is a submitter's rating of a resolved complaint. At most one exists per complaint.
type Feedback struct {
	ComplaintID string    `json:"complaintId"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
	SubmittedBy string    `json:"submittedBy"`
}
