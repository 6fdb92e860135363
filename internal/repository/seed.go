package repository

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// SeedComplaints is the dataset installed when no complaints have been stored yet.
func SeedComplaints() []domain.Complaint {
	seed := []domain.Complaint{
		{
			ID:          "COMP001",
			Title:       "WiFi not working in Block A",
			Description: "The WiFi connection is very slow and keeps disconnecting in Block A hostel rooms.",
			Category:    domain.CategoryWiFi,
			Priority:    domain.PriorityUrgent,
			Status:      domain.StatusInProgress,
			SubmittedBy: "STU001",
			SubmittedAt: mustParse("2025-09-19T08:30:00Z"),
			UpdatedAt:   mustParse("2025-09-19T10:15:00Z"),
		},
		{
			ID:          "COMP002",
			Title:       "Mess food quality poor",
			Description: "The food quality in the mess has deteriorated significantly over the past week.",
			Category:    domain.CategoryFood,
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusSubmitted,
			SubmittedBy: "STU001",
			SubmittedAt: mustParse("2025-09-18T14:20:00Z"),
			UpdatedAt:   mustParse("2025-09-18T14:20:00Z"),
		},
		{
			ID:          "COMP003",
			Title:       "AC not working in Room 101",
			Description: "The air conditioning unit in classroom 101 has been malfunctioning for 3 days.",
			Category:    domain.CategoryClassroom,
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusResolved,
			SubmittedBy: "STU001",
			SubmittedAt: mustParse("2025-09-17T09:15:00Z"),
			UpdatedAt:   mustParse("2025-09-19T11:00:00Z"),
		},
		{
			ID:          "COMP004",
			Title:       "Water leakage in hostel bathroom",
			Description: "There is a continuous water leakage from the ceiling in Block B bathroom.",
			Category:    domain.CategoryMaintenance,
			Priority:    domain.PriorityUrgent,
			Status:      domain.StatusInProgress,
			SubmittedBy: "STU001",
			SubmittedAt: mustParse("2025-09-19T07:45:00Z"),
			UpdatedAt:   mustParse("2025-09-19T09:30:00Z"),
		},
		{
			ID:          "COMP005",
			Title:       "Missing assignment submission portal",
			Description: "Cannot find the assignment submission link for Advanced Programming course.",
			Category:    domain.CategoryAcademics,
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusSubmitted,
			SubmittedBy: "STU001",
			SubmittedAt: mustParse("2025-09-19T11:00:00Z"),
			UpdatedAt:   mustParse("2025-09-19T11:00:00Z"),
		},
	}
	for i := range seed {
		if seed[i].Status == domain.StatusResolved {
			seed[i].MarkResolved(seed[i].UpdatedAt)
		}
	}
	return seed
}

func mustParse(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
