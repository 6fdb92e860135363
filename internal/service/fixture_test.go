package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
)

var fixtureStart = time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctx           context.Context
	clock         *scheduler.ManualClock
	blobs         *persistence.MemoryStore
	store         *repository.RecordStore
	prefs         *repository.PreferenceStore
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	complaints    *ComplaintService
	notifications *NotificationService
	auth          *AuthService
	logs          *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	clock := scheduler.NewManualClock(fixtureStart)
	blobs := persistence.NewMemoryStore()
	store := repository.NewRecordStore(blobs, logger, nil)
	store.Load(ctx)

	roster, err := HashRoster(repository.DefaultRoster(), bcrypt.MinCost)
	require.NoError(t, err)
	users := repository.NewStaticUserRepository(roster)
	prefs := repository.NewPreferenceStore(blobs, logger)
	dispatcher := events.NewInMemoryDispatcher()

	f := &fixture{
		ctx:        ctx,
		clock:      clock,
		blobs:      blobs,
		store:      store,
		prefs:      prefs,
		users:      users,
		dispatcher: dispatcher,
		logs:       logs,
	}
	f.complaints = NewComplaintService(ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	f.notifications = NewNotificationService(NotificationDependencies{
		Store:       store,
		Preferences: prefs,
		Users:       users,
		Dispatcher:  dispatcher,
		Clock:       clock,
		Logger:      logger,
		Config:      config.NotificationConfig{EmailFrom: "noreply@college.edu", SMSSender: "COLLEGE"},
	})
	f.notifications.RegisterHandlers()
	f.auth = NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30}, AuthDependencies{
		Users:      users,
		Sessions:   repository.NewSessionStore(blobs, logger),
		Dispatcher: dispatcher,
		Clock:      clock,
		Logger:     logger,
	})
	return f
}

func (f *fixture) user(t *testing.T, id string) domain.User {
	t.Helper()
	u, err := f.users.GetByID(f.ctx, id)
	require.NoError(t, err)
	return *u
}

func (f *fixture) submit(t *testing.T, title string) *domain.Complaint {
	t.Helper()
	c, err := f.complaints.Submit(f.ctx, SubmitInput{
		Title:       title,
		Description: "Details for " + title,
		Category:    domain.CategoryWiFi,
		Priority:    domain.PriorityUrgent,
		SubmitterID: "STU001",
	})
	require.NoError(t, err)
	return c
}
