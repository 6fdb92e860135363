package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

var errDiskFull = errors.New("disk full")

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBlobStore) Put(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockBlobStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBlobStore) Close() error {
	return m.Called().Error(0)
}

type failingWrites struct {
	store         *repository.RecordStore
	complaints    *ComplaintService
	notifications *NotificationService
	published     map[events.EventType]int
}

// newFailingWrites loads the seed normally, then makes every later write fail.
func newFailingWrites(t *testing.T) *failingWrites {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	clock := scheduler.NewManualClock(fixtureStart)

	blobs := new(mockBlobStore)
	blobs.On("Get", mock.Anything, mock.Anything).Return(nil, persistence.ErrBlobNotFound)
	loadPuts := blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store := repository.NewRecordStore(blobs, logger, nil)
	store.Load(ctx)
	loadPuts.Unset()
	blobs.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(errDiskFull)

	roster, err := HashRoster(repository.DefaultRoster(), bcrypt.MinCost)
	require.NoError(t, err)
	dispatcher := events.NewInMemoryDispatcher()
	f := &failingWrites{store: store, published: map[events.EventType]int{}}
	for _, eventType := range []events.EventType{
		events.EventComplaintSubmitted,
		events.EventComplaintStatusChanged,
		events.EventFeedbackSubmitted,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.published[e.Type]++
			return nil
		})
	}

	f.complaints = NewComplaintService(ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	f.notifications = NewNotificationService(NotificationDependencies{
		Store:       store,
		Preferences: repository.NewPreferenceStore(blobs, logger),
		Users:       repository.NewStaticUserRepository(roster),
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
	})
	f.notifications.RegisterHandlers()
	return f
}

func (f *failingWrites) notificationsFor(complaintID string, kind domain.NotificationType) int {
	count := 0
	for _, n := range f.store.Snapshot().Notifications {
		if n.RelatedComplaintID == complaintID && n.Type == kind {
			count++
		}
	}
	return count
}

func TestSubmitKeepsComplaintWhenSaveFails(t *testing.T) {
	f := newFailingWrites(t)

	created, err := f.complaints.Submit(context.Background(), SubmitInput{
		Title:       "Printer jammed",
		Description: "Library printer eats every page",
		Category:    domain.CategoryClassroom,
		Priority:    domain.PriorityLow,
		SubmitterID: "STU001",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	require.NotNil(t, created)

	stored := f.store.Snapshot().Complaint(created.ID)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)
	assert.Equal(t, 1, f.published[events.EventComplaintSubmitted])
	assert.Equal(t, 1, f.notificationsFor(created.ID, domain.NotificationSystemAlert))
}

func TestTransitionKeepsStatusWhenSaveFails(t *testing.T) {
	f := newFailingWrites(t)

	updated, err := f.complaints.Transition(context.Background(), "COMP002", domain.StatusResolved)
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	require.NotNil(t, updated)
	assert.Equal(t, domain.StatusResolved, updated.Status)

	stored := f.store.Snapshot().Complaint("COMP002")
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusResolved, stored.Status)
	assert.NotNil(t, stored.ResolutionTimeHours)
	assert.Equal(t, 1, f.published[events.EventComplaintStatusChanged])
	assert.Equal(t, 1, f.notificationsFor("COMP002", domain.NotificationStatusUpdate))
}

func TestSubmitFeedbackKeepsRecordWhenSaveFails(t *testing.T) {
	f := newFailingWrites(t)
	student := domain.User{ID: "STU001", Role: domain.RoleStudent}

	fb, err := f.complaints.SubmitFeedback(context.Background(), student, FeedbackInput{ComplaintID: "COMP003", Rating: 5})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistence(err))
	require.NotNil(t, fb)
	assert.Equal(t, 5, fb.Rating)

	stored := f.store.Snapshot().Feedback("COMP003")
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.Rating)
	assert.Equal(t, 1, f.published[events.EventFeedbackSubmitted])
	assert.Equal(t, 1, f.notificationsFor("COMP003", domain.NotificationSystemAlert))
}
