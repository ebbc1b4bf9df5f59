package domain

// Registration is the payload supplied when creating a user, either via
// public registration or invite redemption. All fields other than the
// password are subject to the service's fallback generation rules.
type Registration struct {
	EmpID    string
	Name     string
	Email    string
	Password string
	TeamName string // used only when a new team must be created
}
