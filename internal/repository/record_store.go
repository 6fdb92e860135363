package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// Blob keys holding the persisted collections.
const (
	KeyComplaints    = "complaints"
	KeyFeedbacks     = "feedbacks"
	KeyNotifications = "notifications"
)

// RecordStore owns the application state and mirrors it into a blob store.
// Every read and write goes through its mutex, so operations never interleave.
type RecordStore struct {
	mu      sync.Mutex
	blobs   persistence.BlobStore
	logger  *zap.Logger
	metrics *observability.Metrics
	state   State
}

// NewRecordStore wraps blobs. Call Load before serving reads.
func NewRecordStore(blobs persistence.BlobStore, logger *zap.Logger, metrics *observability.Metrics) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := State{}
	st.normalize()
	return &RecordStore{blobs: blobs, logger: logger, metrics: metrics, state: st}
}

// Load replaces the in-memory state with what the blob store holds. It never fails:
// a missing complaints blob installs and persists the seed dataset, and unreadable
// blobs fall back to the seed (complaints) or an empty collection.
func (r *RecordStore) Load(ctx context.Context) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	complaints, found, err := readCollection[domain.Complaint](ctx, r.blobs, KeyComplaints)
	seedMissing := false
	switch {
	case err != nil:
		r.readFailed(KeyComplaints, err)
		complaints = SeedComplaints()
	case !found:
		complaints = SeedComplaints()
		seedMissing = true
	}

	feedbacks, _, err := readCollection[domain.Feedback](ctx, r.blobs, KeyFeedbacks)
	if err != nil {
		r.readFailed(KeyFeedbacks, err)
		feedbacks = nil
	}

	notifications, _, err := readCollection[domain.Notification](ctx, r.blobs, KeyNotifications)
	if err != nil {
		r.readFailed(KeyNotifications, err)
		notifications = nil
	}

	r.state = State{Complaints: complaints, Feedbacks: feedbacks, Notifications: notifications}
	r.state.normalize()

	if seedMissing {
		r.logger.Info("no stored complaints; installed seed dataset", zap.Int("count", len(complaints)))
		if err := r.saveLocked(ctx); err != nil {
			r.logger.Warn("persisting seed dataset failed", zap.Error(err))
		}
	}
	return r.state.Clone()
}

// Save writes every collection to the blob store.
func (r *RecordStore) Save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(ctx)
}

// View runs fn against a private copy of the state.
func (r *RecordStore) View(fn func(st State)) {
	r.mu.Lock()
	snapshot := r.state.Clone()
	r.mu.Unlock()
	fn(snapshot)
}

// Snapshot returns a copy of the current state.
func (r *RecordStore) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Update applies fn to a working copy. When fn fails nothing changes; otherwise the
// copy becomes the state and is persisted. A persistence failure is returned but the
// in-memory state stays authoritative until the next successful write.
func (r *RecordStore) Update(ctx context.Context, fn func(st *State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.Clone()
	if err := fn(&work); err != nil {
		return err
	}
	work.normalize()
	r.state = work
	return r.saveLocked(ctx)
}

func (r *RecordStore) saveLocked(ctx context.Context) error {
	writes := []struct {
		key   string
		value any
	}{
		{KeyComplaints, r.state.Complaints},
		{KeyFeedbacks, r.state.Feedbacks},
		{KeyNotifications, r.state.Notifications},
	}
	for _, w := range writes {
		data, err := json.Marshal(w.value)
		if err != nil {
			return r.writeFailed(w.key, err)
		}
		if err := r.blobs.Put(ctx, w.key, data); err != nil {
			return r.writeFailed(w.key, err)
		}
	}
	return nil
}

func (r *RecordStore) readFailed(key string, err error) {
	r.metrics.RecordPersistenceFailure("load")
	r.logger.Warn("could not load stored collection; using defaults", zap.String("key", key), zap.Error(err))
}

func (r *RecordStore) writeFailed(key string, err error) error {
	r.metrics.RecordPersistenceFailure("save")
	r.logger.Error("could not persist collection", zap.String("key", key), zap.Error(err))
	return apperrors.NewPersistenceError("save "+key, err)
}

func readCollection[T any](ctx context.Context, blobs persistence.BlobStore, key string) ([]T, bool, error) {
	data, err := blobs.Get(ctx, key)
	if errors.Is(err, persistence.ErrBlobNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, true, err
	}
	return items, true, nil
}
