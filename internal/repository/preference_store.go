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

const preferenceKeyPrefix = "notificationPrefs:"

// PreferenceStore keeps per-user notification delivery flags.
type PreferenceStore struct {
	blobs  persistence.BlobStore
	logger *zap.Logger
}

// NewPreferenceStore builds a preference store over blobs.
func NewPreferenceStore(blobs persistence.BlobStore, logger *zap.Logger) *PreferenceStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceStore{blobs: blobs, logger: logger}
}

// Get returns the stored preferences for userID, or the defaults when none are stored
// or the record cannot be read.
func (p *PreferenceStore) Get(ctx context.Context, userID string) domain.NotificationPreferences {
	data, err := p.blobs.Get(ctx, preferenceKeyPrefix+userID)
	if err != nil {
		if !errors.Is(err, persistence.ErrBlobNotFound) {
			p.logger.Warn("loading notification preferences failed", zap.String("user_id", userID), zap.Error(err))
		}
		return domain.DefaultNotificationPreferences()
	}
	var prefs domain.NotificationPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		p.logger.Warn("stored notification preferences unreadable", zap.String("user_id", userID), zap.Error(err))
		return domain.DefaultNotificationPreferences()
	}
	return prefs
}

// Set replaces the preferences for userID.
func (p *PreferenceStore) Set(ctx context.Context, userID string, prefs domain.NotificationPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return apperrors.NewPersistenceError("encode preferences", err)
	}
	if err := p.blobs.Put(ctx, preferenceKeyPrefix+userID, data); err != nil {
		return apperrors.NewPersistenceError("save preferences", err)
	}
	return nil
}
