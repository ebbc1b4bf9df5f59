package domain

import "time"

// Role is the closed set of privilege levels.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// User statuses. Only active users count toward the team admission ceiling.
const (
	StatusActive = "active"
)

type User struct {
	ID           string
	EmpID        string // employee identifier, unique case-insensitively across all teams
	Name         string
	Email        string // optional; unique case-insensitively when set
	Password     string // legacy plaintext credential, cleared on first successful login
	PasswordHash string // argon2id PHC string; empty only for pre-migration rows
	Role         Role
	TeamID       string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// SanitizedUser is the externally visible projection of a User with all
// credential material stripped.
type SanitizedUser struct {
	ID        string    `json:"id"`
	EmpID     string    `json:"emp_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	TeamID    string    `json:"team_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitize strips credential fields for responses.
func (u User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:        u.ID,
		EmpID:     u.EmpID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		TeamID:    u.TeamID,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
