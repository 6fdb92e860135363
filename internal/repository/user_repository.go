package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// UserRepository defines read access to the user roster.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// RosterEntry is a roster user with the plaintext demo password it logs in with.
type RosterEntry struct {
	User     domain.User
	Password string
}

// DefaultRoster returns the fixed demo accounts.
func DefaultRoster() []RosterEntry {
	return []RosterEntry{
		{
			User: domain.User{
				ID:         "STU001",
				Role:       domain.RoleStudent,
				Name:       "John Doe",
				Email:      "student@college.edu",
				Phone:      "+1-555-0101",
				Department: "Computer Science",
			},
			Password: "demo123",
		},
		{
			User: domain.User{
				ID:         "STF001",
				Role:       domain.RoleStaff,
				Name:       "Jane Smith",
				Email:      "staff@college.edu",
				Phone:      "+1-555-0102",
				Department: "Facilities",
			},
			Password: "demo123",
		},
		{
			User: domain.User{
				ID:         "ADM001",
				Role:       domain.RoleAdmin,
				Name:       "Admin User",
				Email:      "admin@college.edu",
				Phone:      "+1-555-0103",
				Department: "Administration",
			},
			Password: "demo123",
		},
	}
}

type staticUserRepository struct {
	users []domain.User
}

// NewStaticUserRepository serves a fixed roster. Users are expected to carry their
// password hashes already.
func NewStaticUserRepository(users []domain.User) UserRepository {
	return &staticUserRepository{users: append([]domain.User(nil), users...)}
}

func (r *staticUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *staticUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (r *staticUserRepository) List(_ context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), r.users...), nil
}
