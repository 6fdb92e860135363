package repository

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

const sessionKeyPrefix = "currentUser:"

// SessionStore keeps the user bound to each login session.
type SessionStore struct {
	blobs  persistence.BlobStore
	logger *zap.Logger
}

// NewSessionStore builds a session store over blobs.
func NewSessionStore(blobs persistence.BlobStore, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{blobs: blobs, logger: logger}
}

// Save records user as the owner of sessionID.
func (s *SessionStore) Save(ctx context.Context, sessionID string, user domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return apperrors.NewPersistenceError("encode session", err)
	}
	if err := s.blobs.Put(ctx, sessionKeyPrefix+sessionID, data); err != nil {
		return apperrors.NewPersistenceError("save session", err)
	}
	return nil
}

// Load returns the session user. Unknown and unreadable sessions are both NotFound;
// an unreadable record is removed.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.User, error) {
	data, err := s.blobs.Get(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, persistence.ErrBlobNotFound) {
		return domain.User{}, apperrors.NewNotFound("session", nil)
	}
	if err != nil {
		return domain.User{}, apperrors.NewPersistenceError("load session", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		s.logger.Warn("discarding unreadable session", zap.String("session_id", sessionID), zap.Error(err))
		_ = s.blobs.Delete(ctx, sessionKeyPrefix+sessionID)
		return domain.User{}, apperrors.NewNotFound("session", nil)
	}
	return user, nil
}

// Clear ends a session. Clearing an unknown session succeeds.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.blobs.Delete(ctx, sessionKeyPrefix+sessionID); err != nil {
		return apperrors.NewPersistenceError("clear session", err)
	}
	return nil
}
