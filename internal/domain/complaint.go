package domain

import (
	"fmt"
	"time"
)

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus int

const (
	StatusSubmitted  ComplaintStatus = 1
	StatusInProgress ComplaintStatus = 2
	StatusResolved   ComplaintStatus = 3
)

// Statuses lists every status in lifecycle order.
var Statuses = []ComplaintStatus{StatusSubmitted, StatusInProgress, StatusResolved}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	return s >= StatusSubmitted && s <= StatusResolved
}

func (s ComplaintStatus) String() string {
	switch s {
	case StatusSubmitted:
		return "Submitted"
	case StatusInProgress:
		return "In Progress"
	case StatusResolved:
		return "Resolved"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Category classifies what a complaint is about.
type Category int

const (
	CategoryWiFi        Category = 1
	CategoryHostel      Category = 2
	CategoryFood        Category = 3
	CategoryClassroom   Category = 4
	CategoryMaintenance Category = 5
	CategoryAcademics   Category = 6
	CategoryHarassment  Category = 7
	CategoryOther       Category = 8
)

// Categories lists every category.
var Categories = []Category{
	CategoryWiFi, CategoryHostel, CategoryFood, CategoryClassroom,
	CategoryMaintenance, CategoryAcademics, CategoryHarassment, CategoryOther,
}

var categoryNames = map[Category]string{
	CategoryWiFi:        "WiFi",
	CategoryHostel:      "Hostel",
	CategoryFood:        "Food",
	CategoryClassroom:   "Classroom",
	CategoryMaintenance: "Maintenance",
	CategoryAcademics:   "Academics",
	CategoryHarassment:  "Harassment",
	CategoryOther:       "Other",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(c))
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority int

const (
	PriorityUrgent ComplaintPriority = 1
	PriorityMedium ComplaintPriority = 2
	PriorityLow    ComplaintPriority = 3
)

// Priorities lists every priority, most urgent first.
var Priorities = []ComplaintPriority{PriorityUrgent, PriorityMedium, PriorityLow}

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

func (p ComplaintPriority) String() string {
	switch p {
	case PriorityUrgent:
		return "Urgent"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// TargetResolution is the reporting target for a priority. It is never enforced.
func (p ComplaintPriority) TargetResolution() time.Duration {
	switch p {
	case PriorityUrgent:
		return 24 * time.Hour
	case PriorityMedium:
		return 72 * time.Hour
	default:
		return 168 * time.Hour
	}
}

// Complaint is the aggregate tracked through the lifecycle.
type Complaint struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Category            Category          `json:"category"`
	Priority            ComplaintPriority `json:"priority"`
	Status              ComplaintStatus   `json:"status"`
	SubmittedBy         string            `json:"submittedBy"`
	SubmittedAt         time.Time         `json:"submittedAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	ResolutionTimeHours *float64          `json:"resolutionTimeHours,omitempty"`
}

// MarkResolved locks in the resolution time the first time it is called.
// Later calls leave the recorded value untouched.
func (c *Complaint) MarkResolved(at time.Time) {
	if c.ResolutionTimeHours != nil {
		return
	}
	hours := at.Sub(c.SubmittedAt).Hours()
	c.ResolutionTimeHours = &hours
}
