// Package query derives read-side views from complaint collections. Every function is
// pure: inputs are never modified and results are fresh slices.
package query

import (
	"slices"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// DefaultRecentLimit is the dashboard size of the recent complaints list.
const DefaultRecentLimit = 5

// Criteria narrows a complaint list. Nil fields and empty text match everything.
type Criteria struct {
	Category   *domain.Category
	Priority   *domain.ComplaintPriority
	Status     *domain.ComplaintStatus
	SearchText string
}

// Statistics counts complaints per status.
type Statistics struct {
	Total      int `json:"total"`
	Submitted  int `json:"submitted"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
}

// Analytics is the admin reporting view.
type Analytics struct {
	Statistics             Statistics     `json:"statistics"`
	ByCategory             map[string]int `json:"byCategory"`
	ByPriority             map[string]int `json:"byPriority"`
	ByStatus               map[string]int `json:"byStatus"`
	AverageResolutionHours *float64       `json:"averageResolutionHours,omitempty"`
	ResolvedWithinTarget   int            `json:"resolvedWithinTarget"`
	FeedbackCount          int            `json:"feedbackCount"`
	AverageFeedbackRating  *float64       `json:"averageFeedbackRating,omitempty"`
}

// VisibleTo returns the complaints user may read: students see their own, staff and
// admins see all.
func VisibleTo(user domain.User, complaints []domain.Complaint) []domain.Complaint {
	if user.Role.SeesAllComplaints() {
		return slices.Clone(complaints)
	}
	out := make([]domain.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if c.SubmittedBy == user.ID {
			out = append(out, c)
		}
	}
	return out
}

// CanView reports whether user may read c.
func CanView(user domain.User, c domain.Complaint) bool {
	return user.Role.SeesAllComplaints() || c.SubmittedBy == user.ID
}

// Filter keeps complaints matching every set criterion, newest submission first.
// A blank search text is ignored; otherwise it matches as given, surrounding spaces included.
// Complaints submitted at the same instant keep their input order.
func Filter(complaints []domain.Complaint, criteria Criteria) []domain.Complaint {
	search := ""
	if strings.TrimSpace(criteria.SearchText) != "" {
		search = strings.ToLower(criteria.SearchText)
	}
	out := make([]domain.Complaint, 0, len(complaints))
	for _, c := range complaints {
		if criteria.Category != nil && c.Category != *criteria.Category {
			continue
		}
		if criteria.Priority != nil && c.Priority != *criteria.Priority {
			continue
		}
		if criteria.Status != nil && c.Status != *criteria.Status {
			continue
		}
		if search != "" && !matchesText(c, search) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

// Recent returns up to n complaints, newest first.
func Recent(complaints []domain.Complaint, n int) []domain.Complaint {
	out := slices.Clone(complaints)
	if out == nil {
		out = []domain.Complaint{}
	}
	sortNewestFirst(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summarize counts complaints per status.
func Summarize(complaints []domain.Complaint) Statistics {
	stats := Statistics{Total: len(complaints)}
	for _, c := range complaints {
		switch c.Status {
		case domain.StatusSubmitted:
			stats.Submitted++
		case domain.StatusInProgress:
			stats.InProgress++
		case domain.StatusResolved:
			stats.Resolved++
		}
	}
	return stats
}

// Analyze builds the admin reporting view over complaints and their feedback.
func Analyze(complaints []domain.Complaint, feedbacks []domain.Feedback) Analytics {
	report := Analytics{
		Statistics:    Summarize(complaints),
		ByCategory:    make(map[string]int, len(domain.Categories)),
		ByPriority:    make(map[string]int, len(domain.Priorities)),
		ByStatus:      make(map[string]int, len(domain.Statuses)),
		FeedbackCount: len(feedbacks),
	}
	for _, category := range domain.Categories {
		report.ByCategory[category.String()] = 0
	}
	for _, priority := range domain.Priorities {
		report.ByPriority[priority.String()] = 0
	}
	for _, status := range domain.Statuses {
		report.ByStatus[status.String()] = 0
	}

	var totalHours float64
	var timed int
	for _, c := range complaints {
		report.ByCategory[c.Category.String()]++
		report.ByPriority[c.Priority.String()]++
		report.ByStatus[c.Status.String()]++

		if c.Status != domain.StatusResolved || c.ResolutionTimeHours == nil {
			continue
		}
		hours := *c.ResolutionTimeHours
		totalHours += hours
		timed++
		if hours <= c.Priority.TargetResolution().Hours() {
			report.ResolvedWithinTarget++
		}
	}
	if timed > 0 {
		avg := totalHours / float64(timed)
		report.AverageResolutionHours = &avg
	}

	if len(feedbacks) > 0 {
		var sum int
		for _, f := range feedbacks {
			sum += f.Rating
		}
		avg := float64(sum) / float64(len(feedbacks))
		report.AverageFeedbackRating = &avg
	}
	return report
}

func matchesText(c domain.Complaint, search string) bool {
	return strings.Contains(strings.ToLower(c.Title), search) ||
		strings.Contains(strings.ToLower(c.Description), search) ||
		strings.Contains(strings.ToLower(c.ID), search)
}

func sortNewestFirst(complaints []domain.Complaint) {
	slices.SortStableFunc(complaints, func(a, b domain.Complaint) int {
		return b.SubmittedAt.Compare(a.SubmittedAt)
	})
}
