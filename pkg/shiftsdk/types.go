// Package shiftsdk is a small Go client for the shiftclock identity service,
// used by internal tooling and the end-to-end tests. Non-browser callers
// carry the session token in the X-Session-Token header; browsers get the
// same token as an HttpOnly cookie.
package shiftsdk

import "time"

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	EmpID    string `json:"emp_id,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type User struct {
	ID        string    `json:"id"`
	EmpID     string    `json:"emp_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	TeamID    string    `json:"team_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by login and invite redemption. The token is also
// set as the session cookie; the body copy serves header-based callers.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	EmpID    string `json:"emp_id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	TeamName string `json:"team_name,omitempty"`
}

type MintInviteRequest struct {
	Role     string `json:"role"`
	TeamID   string `json:"team_id,omitempty"`
	TTLHours int    `json:"ttl_hours,omitempty"`
	NewTeam  bool   `json:"new_team,omitempty"`
}

type InviteResponse struct {
	InviteToken string     `json:"invite_token"`
	InviteID    string     `json:"invite_id"`
	TeamID      string     `json:"team_id,omitempty"`
	Role        string     `json:"role"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type Invite struct {
	ID        string     `json:"id"`
	TeamID    string     `json:"team_id,omitempty"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Used      bool       `json:"used"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListInvitesResponse struct {
	Invites []Invite `json:"invites"`
}

type RedeemInviteRequest struct {
	Token    string `json:"token"`
	EmpID    string `json:"emp_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	TeamName string `json:"team_name,omitempty"`
}

type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
