package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	"github.com/spec-kit/complaint-service/internal/service"
)

var demoConfig = config.DemoConfig{
	AutoProgress:    true,
	InProgressAfter: 35 * time.Second,
	ResolvedAfter:   125 * time.Second,
}

type harness struct {
	ctx        context.Context
	clock      *scheduler.ManualClock
	store      *repository.RecordStore
	complaints *service.ComplaintService
	worker     *ProgressionWorker
}

func newHarness(t *testing.T, cfg config.DemoConfig) *harness {
	t.Helper()
	ctx := context.Background()
	clock := scheduler.NewManualClock(time.Date(2025, 9, 20, 9, 0, 0, 0, time.UTC))
	store := repository.NewRecordStore(persistence.NewMemoryStore(), zap.NewNop(), nil)
	store.Load(ctx)
	dispatcher := events.NewInMemoryDispatcher()

	complaints := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      clock,
	})
	w := NewProgressionWorker(complaints, scheduler.New(clock, nil, nil), cfg, nil)
	StartProgressionWorker(w, dispatcher)
	return &harness{ctx: ctx, clock: clock, store: store, complaints: complaints, worker: w}
}

func (h *harness) submit(t *testing.T) string {
	t.Helper()
	c, err := h.complaints.Submit(h.ctx, service.SubmitInput{
		Title:       "Projector broken",
		Description: "Room 204 projector shows no signal.",
		Category:    domain.CategoryClassroom,
		Priority:    domain.PriorityMedium,
		SubmitterID: "STU001",
	})
	require.NoError(t, err)
	return c.ID
}

func (h *harness) status(t *testing.T, id string) domain.ComplaintStatus {
	t.Helper()
	c := h.store.Snapshot().Complaint(id)
	require.NotNil(t, c)
	return c.Status
}

func TestProgressionWalksComplaintToResolved(t *testing.T) {
	h := newHarness(t, demoConfig)
	id := h.submit(t)
	assert.Equal(t, 2, h.worker.Pending(id))

	h.clock.Advance(34 * time.Second)
	assert.Equal(t, domain.StatusSubmitted, h.status(t, id))

	h.clock.Advance(time.Second)
	assert.Equal(t, domain.StatusInProgress, h.status(t, id))
	assert.Equal(t, 1, h.worker.Pending(id))

	h.clock.Advance(90 * time.Second)
	c := h.store.Snapshot().Complaint(id)
	require.NotNil(t, c)
	assert.Equal(t, domain.StatusResolved, c.Status)
	require.NotNil(t, c.ResolutionTimeHours)
	assert.InDelta(t, 125.0/3600.0, *c.ResolutionTimeHours, 1e-9)
	assert.Zero(t, h.worker.Pending(id))
}

func TestProgressionSkipsVanishedComplaint(t *testing.T) {
	h := newHarness(t, demoConfig)
	id := h.submit(t)

	require.NoError(t, h.store.Update(h.ctx, func(st *repository.State) error {
		kept := st.Complaints[:0]
		for _, c := range st.Complaints {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		st.Complaints = kept
		return nil
	}))

	assert.NotPanics(t, func() { h.clock.Advance(5 * time.Minute) })
	assert.Nil(t, h.store.Snapshot().Complaint(id))
	assert.Len(t, h.store.Snapshot().Complaints, 5)
}

func TestProgressionStopCancelsPendingTransitions(t *testing.T) {
	h := newHarness(t, demoConfig)
	id := h.submit(t)

	h.worker.Stop()
	assert.Zero(t, h.worker.Pending(id))

	h.clock.Advance(10 * time.Minute)
	assert.Equal(t, domain.StatusSubmitted, h.status(t, id))
}

func TestProgressionDisabled(t *testing.T) {
	cfg := demoConfig
	cfg.AutoProgress = false
	h := newHarness(t, cfg)
	id := h.submit(t)

	assert.Zero(t, h.worker.Pending(id))
	h.clock.Advance(10 * time.Minute)
	assert.Equal(t, domain.StatusSubmitted, h.status(t, id))
}
