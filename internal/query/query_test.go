package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

var base = time.Date(2025, 9, 19, 8, 0, 0, 0, time.UTC)

func complaint(id string, status domain.ComplaintStatus, offset time.Duration) domain.Complaint {
	return domain.Complaint{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description " + id,
		Category:    domain.CategoryWiFi,
		Priority:    domain.PriorityMedium,
		Status:      status,
		SubmittedBy: "STU001",
		SubmittedAt: base.Add(offset),
		UpdatedAt:   base.Add(offset),
	}
}

func statusScenario() []domain.Complaint {
	statuses := []domain.ComplaintStatus{1, 2, 3, 3, 1}
	out := make([]domain.Complaint, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, complaint(fmt.Sprintf("COMP00%d", i+1), s, time.Duration(i)*time.Hour))
	}
	return out
}

func TestSummarizeCountsPerStatus(t *testing.T) {
	stats := Summarize(statusScenario())
	assert.Equal(t, Statistics{Total: 5, Submitted: 2, InProgress: 1, Resolved: 2}, stats)
	assert.Equal(t, Statistics{}, Summarize(nil))
}

func TestFilterByStatusNewestFirst(t *testing.T) {
	resolved := domain.StatusResolved
	got := Filter(statusScenario(), Criteria{Status: &resolved})

	require.Len(t, got, 2)
	assert.Equal(t, "COMP004", got[0].ID)
	assert.Equal(t, "COMP003", got[1].ID)
}

func TestFilterIsIdempotentAndLeavesInputAlone(t *testing.T) {
	input := statusScenario()
	submitted := domain.StatusSubmitted
	criteria := Criteria{Status: &submitted, SearchText: "comp"}

	once := Filter(input, criteria)
	twice := Filter(once, criteria)
	assert.Equal(t, once, twice)
	assert.Equal(t, "COMP001", input[0].ID)
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	items := statusScenario()
	items[2].Title = "WiFi dead in LIBRARY"

	assert.Len(t, Filter(items, Criteria{SearchText: "library"}), 1)
	assert.Len(t, Filter(items, Criteria{SearchText: "comp005"}), 1)
	assert.Len(t, Filter(items, Criteria{SearchText: "   "}), 5)
	assert.Len(t, Filter(items, Criteria{SearchText: "DEAD IN"}), 1)
	assert.Empty(t, Filter(items, Criteria{SearchText: "library "}))
	assert.Empty(t, Filter(items, Criteria{SearchText: "nothing like this"}))
}

func TestFilterCombinesCriteria(t *testing.T) {
	items := statusScenario()
	items[0].Category = domain.CategoryFood
	items[0].Priority = domain.PriorityUrgent
	items[4].Category = domain.CategoryFood

	food := domain.CategoryFood
	urgent := domain.PriorityUrgent
	got := Filter(items, Criteria{Category: &food})
	assert.Len(t, got, 2)

	got = Filter(items, Criteria{Category: &food, Priority: &urgent})
	require.Len(t, got, 1)
	assert.Equal(t, "COMP001", got[0].ID)
}

func TestFilterKeepsInputOrderOnTies(t *testing.T) {
	items := []domain.Complaint{complaint("B", 1, 0), complaint("A", 1, 0), complaint("C", 1, time.Minute)}
	got := Filter(items, Criteria{})
	assert.Equal(t, []string{"C", "B", "A"}, ids(got))
}

func TestVisibleToScopesStudents(t *testing.T) {
	items := statusScenario()
	items[1].SubmittedBy = "STU002"

	student := domain.User{ID: "STU001", Role: domain.RoleStudent}
	staff := domain.User{ID: "STF001", Role: domain.RoleStaff}
	admin := domain.User{ID: "ADM001", Role: domain.RoleAdmin}

	mine := VisibleTo(student, items)
	assert.Len(t, mine, 4)
	for _, c := range mine {
		assert.Equal(t, "STU001", c.SubmittedBy)
	}
	assert.Len(t, VisibleTo(staff, items), 5)
	assert.Len(t, VisibleTo(admin, items), 5)

	assert.False(t, CanView(student, items[1]))
	assert.True(t, CanView(staff, items[1]))
}

func TestRecentLimits(t *testing.T) {
	items := statusScenario()
	got := Recent(items, 3)
	assert.Equal(t, []string{"COMP005", "COMP004", "COMP003"}, ids(got))
	assert.Len(t, Recent(items, DefaultRecentLimit), 5)
	assert.NotNil(t, Recent(nil, 5))
}

func TestAnalyze(t *testing.T) {
	items := statusScenario()
	fast, slow := 10.0, 100.0
	items[2].ResolutionTimeHours = &fast
	items[3].ResolutionTimeHours = &slow
	items[3].Priority = domain.PriorityUrgent

	report := Analyze(items, []domain.Feedback{{ComplaintID: "COMP003", Rating: 5}, {ComplaintID: "COMP004", Rating: 2}})

	assert.Equal(t, 5, report.ByCategory["WiFi"])
	assert.Equal(t, 0, report.ByCategory["Hostel"])
	assert.Equal(t, 1, report.ByPriority["Urgent"])
	assert.Equal(t, 1, report.ByStatus["In Progress"])
	require.NotNil(t, report.AverageResolutionHours)
	assert.InDelta(t, 55.0, *report.AverageResolutionHours, 1e-9)
	assert.Equal(t, 1, report.ResolvedWithinTarget)
	require.NotNil(t, report.AverageFeedbackRating)
	assert.InDelta(t, 3.5, *report.AverageFeedbackRating, 1e-9)

	empty := Analyze(nil, nil)
	assert.Nil(t, empty.AverageResolutionHours)
	assert.Nil(t, empty.AverageFeedbackRating)
}

func ids(items []domain.Complaint) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}
