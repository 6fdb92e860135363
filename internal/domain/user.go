package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roster roles.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleStaff
	RoleAdmin
)

// Roles lists every role.
var Roles = []Role{RoleStudent, RoleStaff, RoleAdmin}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleStaff:
		return "Staff"
	case RoleAdmin:
		return "Admin"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// ParseRole matches a role name case-insensitively.
func ParseRole(name string) (Role, error) {
	for _, role := range Roles {
		if strings.EqualFold(strings.TrimSpace(name), role.String()) {
			return role, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", name)
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("unknown role %d", uint8(r))
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// CanChangeStatus reports whether the role may move complaints between states.
func (r Role) CanChangeStatus() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// SeesAllComplaints reports whether the role reads every complaint rather than only its own.
func (r Role) SeesAllComplaints() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	case RoleStudent:
		return false
	}
	return false
}

// NotificationPreferences are per-user delivery flags.
type NotificationPreferences struct {
	Email         bool `json:"email"`
	SMS           bool `json:"sms"`
	Push          bool `json:"push"`
	StatusUpdates bool `json:"statusUpdates"`
	Broadcasts    bool `json:"broadcasts"`
}

// DefaultNotificationPreferences enables every channel.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, SMS: true, Push: true, StatusUpdates: true, Broadcasts: true}
}

// User is a read-only roster entry.
type User struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Department   string `json:"department,omitempty"`
	PasswordHash string `json:"-"`
}
