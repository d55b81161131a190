// Package models defines the data structures that map to database tables
// and the derived shapes (export catalog, publish run) used throughout
// the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents an admin user's permission level. Menu writes and the
// publish pipeline require the admin role; staff can only read.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// AdminUser represents a panel user with authentication and 2FA fields.
type AdminUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	TOTPSecret   *string   `json:"-"` // Nullable; set during 2FA setup
	TOTPEnabled  bool      `json:"totp_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user carries the admin role claim.
func (u *AdminUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Needs2FASetup returns true if the user has not completed 2FA enrollment.
func (u *AdminUser) Needs2FASetup() bool {
	return !u.TOTPEnabled
}
