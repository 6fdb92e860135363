package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/query"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

func TestSubmitCreatesSubmittedComplaint(t *testing.T) {
	f := newFixture(t)

	c := f.submit(t, "  WiFi down in library  ")

	assert.Regexp(t, `^COMP\d{6}$`, c.ID)
	assert.Equal(t, "WiFi down in library", c.Title)
	assert.Equal(t, domain.StatusSubmitted, c.Status)
	assert.Equal(t, fixtureStart, c.SubmittedAt)
	assert.Equal(t, c.SubmittedAt, c.UpdatedAt)
	assert.Nil(t, c.ResolutionTimeHours)
	assert.Len(t, f.store.Snapshot().Complaints, 6)

	admin := f.user(t, "ADM001")
	alerts := f.notifications.ListFor(f.ctx, admin, false)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.NotificationSystemAlert, alerts[0].Type)
	assert.Equal(t, domain.Audience("Admin"), alerts[0].Audience)
	assert.Equal(t, c.ID, alerts[0].RelatedComplaintID)
}

func TestSubmitReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t)

	_, err := f.complaints.Submit(f.ctx, SubmitInput{
		Title:       "   ",
		Description: "something",
		Category:    domain.Category(42),
		Priority:    domain.PriorityLow,
		SubmitterID: "STU001",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "title is required", domainErr.Message)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "category")
	assert.NotContains(t, domainErr.Details, "priority")
	assert.Len(t, f.store.Snapshot().Complaints, 5)
}

func TestSubmitAtSameInstantGetsDistinctIDs(t *testing.T) {
	f := newFixture(t)

	first := f.submit(t, "first")
	second := f.submit(t, "second")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Regexp(t, `^COMP\d{6}$`, second.ID)
}

func TestResolutionTimeIsRecordedOnceAndLocked(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "WiFi not working")

	f.clock.Advance(10 * time.Hour)
	resolved, err := f.complaints.Transition(f.ctx, c.ID, domain.StatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolutionTimeHours)
	assert.InDelta(t, 10.0, *resolved.ResolutionTimeHours, 1e-9)

	f.clock.Advance(5 * time.Hour)
	_, err = f.complaints.Transition(f.ctx, c.ID, domain.StatusInProgress)
	require.NoError(t, err)
	again, err := f.complaints.Transition(f.ctx, c.ID, domain.StatusResolved)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, *again.ResolutionTimeHours, 1e-9)
	assert.Equal(t, fixtureStart.Add(15*time.Hour), again.UpdatedAt)
}

func TestTransitionRejectsUnknownComplaintAndStatus(t *testing.T) {
	f := newFixture(t)
	before := f.store.Snapshot()

	_, err := f.complaints.Transition(f.ctx, "COMP999999", domain.StatusResolved)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.complaints.Transition(f.ctx, "COMP001", domain.ComplaintStatus(9))
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, before, f.store.Snapshot())
}

func TestTransitionNotifiesSubmitter(t *testing.T) {
	f := newFixture(t)
	c := f.submit(t, "Hostel light")

	_, err := f.complaints.Transition(f.ctx, c.ID, domain.StatusInProgress)
	require.NoError(t, err)

	student := f.user(t, "STU001")
	items := f.notifications.ListFor(f.ctx, student, true)
	require.Len(t, items, 1)
	assert.Equal(t, domain.NotificationStatusUpdate, items[0].Type)
	assert.Contains(t, items[0].Message, "Submitted to In Progress")
}

func TestUpdateStatusIsRoleGated(t *testing.T) {
	f := newFixture(t)

	_, err := f.complaints.UpdateStatus(f.ctx, f.user(t, "STU001"), "COMP002", domain.StatusResolved)
	assert.True(t, apperrors.IsForbidden(err))

	updated, err := f.complaints.UpdateStatus(f.ctx, f.user(t, "STF001"), "COMP002", domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	updated, err = f.complaints.UpdateStatus(f.ctx, f.user(t, "ADM001"), "COMP002", domain.StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, updated.Status)
}

func TestSubmitFeedbackRules(t *testing.T) {
	f := newFixture(t)
	student := f.user(t, "STU001")
	staff := f.user(t, "STF001")

	_, err := f.complaints.SubmitFeedback(f.ctx, student, FeedbackInput{ComplaintID: "COMP404", Rating: 5})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.complaints.SubmitFeedback(f.ctx, student, FeedbackInput{ComplaintID: "COMP002", Rating: 5})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.complaints.SubmitFeedback(f.ctx, staff, FeedbackInput{ComplaintID: "COMP003", Rating: 5})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = f.complaints.SubmitFeedback(f.ctx, student, FeedbackInput{ComplaintID: "COMP003", Rating: 6})
	assert.True(t, apperrors.IsValidation(err))

	fb, err := f.complaints.SubmitFeedback(f.ctx, student, FeedbackInput{ComplaintID: "COMP003", Rating: 4, Comment: " fixed quickly "})
	require.NoError(t, err)
	assert.Equal(t, "fixed quickly", fb.Comment)
	assert.Equal(t, fixtureStart, fb.SubmittedAt)

	_, err = f.complaints.SubmitFeedback(f.ctx, student, FeedbackInput{ComplaintID: "COMP003", Rating: 1})
	assert.True(t, apperrors.IsConflict(err))
	assert.Len(t, f.store.Snapshot().Feedbacks, 1)

	got, err := f.complaints.FeedbackFor(f.ctx, staff, "COMP003")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)

	var alerts []domain.Notification
	for _, n := range f.notifications.ListFor(f.ctx, staff, true) {
		if n.RelatedComplaintID == "COMP003" {
			alerts = append(alerts, n)
		}
	}
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.NotificationSystemAlert, alerts[0].Type)
	assert.Equal(t, "Complaint COMP003 was rated 4/5 by its submitter.", alerts[0].Message)
	for _, n := range f.notifications.ListFor(f.ctx, student, false) {
		assert.NotEqual(t, "Feedback received", n.Title)
	}
}

func TestReadsAreScopedByRole(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Update(f.ctx, func(st *repository.State) error {
		st.Complaint("COMP002").SubmittedBy = "STU777"
		return nil
	}))
	student := f.user(t, "STU001")
	staff := f.user(t, "STF001")

	_, err := f.complaints.Get(f.ctx, student, "COMP002")
	assert.True(t, apperrors.IsForbidden(err))
	_, err = f.complaints.Get(f.ctx, staff, "COMP002")
	assert.NoError(t, err)
	_, err = f.complaints.Get(f.ctx, staff, "COMP404")
	assert.True(t, apperrors.IsNotFound(err))

	assert.Len(t, f.complaints.List(f.ctx, student, query.Criteria{}), 4)
	assert.Len(t, f.complaints.List(f.ctx, staff, query.Criteria{}), 5)
	assert.Equal(t, 4, f.complaints.Statistics(f.ctx, student).Total)
	assert.Len(t, f.complaints.Recent(f.ctx, staff, 3), 3)

	_, err = f.complaints.Analytics(f.ctx, staff)
	assert.True(t, apperrors.IsForbidden(err))
	report, err := f.complaints.Analytics(f.ctx, f.user(t, "ADM001"))
	require.NoError(t, err)
	assert.Equal(t, 5, report.Statistics.Total)
}
