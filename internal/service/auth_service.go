package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/scheduler"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AuthService coordinates roster login and session lookups.
type AuthService struct {
	users      repository.UserRepository
	sessions   *repository.SessionStore
	dispatcher events.Dispatcher
	clock      scheduler.Clock
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Sessions   *repository.SessionStore
	Dispatcher events.Dispatcher
	Clock      scheduler.Clock
	Logger     *zap.Logger
}

// LoginInput carries roster credentials. The role must match the account.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginResult is a fresh session.
type LoginResult struct {
	User      domain.User
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// HashRoster resolves roster entries into users carrying bcrypt password hashes.
func HashRoster(entries []repository.RosterEntry, cost int) ([]domain.User, error) {
	users := make([]domain.User, 0, len(entries))
	for _, entry := range entries {
		hash, err := auth.HashPassword(entry.Password, cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", entry.User.ID, err)
		}
		user := entry.User
		user.PasswordHash = hash
		users = append(users, user)
	}
	return users, nil
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
	if s.clock == nil {
		s.clock = scheduler.SystemClock()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.tokenMgr = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), s.clock.Now)
	return s
}

// Login checks email, password and role against the roster and opens a session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("role is invalid", map[string]any{"role": input.Role})
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if user.Role != role {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	sessionID := uuid.NewString()
	token, exp, err := s.tokenMgr.GenerateToken(*user, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	sessionUser := *user
	sessionUser.PasswordHash = ""
	if err := s.sessions.Save(ctx, sessionID, sessionUser); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", user.Role.String()))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserLoggedIn,
		Actor:   events.Actor{UserID: user.ID, Role: user.Role},
		Payload: events.UserLoggedInPayload{Name: user.Name},
	})
	return &LoginResult{User: sessionUser, SessionID: sessionID, Token: token, ExpiresAt: exp}, nil
}

// Logout ends the session. Ending an already ended session succeeds.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return nil
	}
	return s.sessions.Clear(ctx, principal.SessionID)
}

// Resolve validates a bearer token and returns the user of its live session.
func (s *AuthService) Resolve(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := s.sessions.Load(ctx, claims.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("session ended")
		}
		return nil, err
	}
	if user.ID != claims.Subject || user.Role != claims.Role {
		return nil, apperrors.NewUnauthorized("session does not match token")
	}
	return &auth.Principal{User: user, SessionID: claims.ID}, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
