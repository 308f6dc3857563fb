package identity

import (
	"time"
)

// Role is a hackboard user role. The set is closed: any wire value outside it
// is treated as capability-less rather than as an error.
type Role string

const (
	RoleAdmin       Role = "admin"       // Platform operator: manages users, hackathons, settings
	RoleSponsor     Role = "sponsor"     // Sponsors challenges and reviews submissions to them
	RoleParticipant Role = "participant" // Competes: joins teams, submits to challenges
	RoleJudge       Role = "judge"       // Scores submissions during judging
)

// AllRoles lists every valid role. The order is stable and used by the
// default navigation manifest.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSponsor, RoleParticipant, RoleJudge}
}

// ParseRole maps a wire string onto a known Role. The second return value is
// false for anything outside the closed set, including the empty string.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleSponsor, RoleParticipant, RoleJudge:
		return Role(s), true
	default:
		return "", false
	}
}

// User is the resolved identity of the currently authenticated user, as
// returned by the identity boundary. Role carries the raw wire value; use
// ParsedRole to get the validated enum.
type User struct {
	ID          string    `json:"id,omitempty"`          // Unique identifier for the user
	Email       string    `json:"email,omitempty"`       // User's email address
	Username    string    `json:"username,omitempty"`    // Unique username
	FirstName   string    `json:"first_name,omitempty"`  // First name of the user
	LastName    string    `json:"last_name,omitempty"`   // Last name of the user
	Role        string    `json:"role,omitempty"`        // Raw role string from the wire
	AvatarURL   string    `json:"avatar_url,omitempty"`  // Profile picture URL
	DateJoined  time.Time `json:"date_joined,omitempty"` // When the user registered
	LastLogin   time.Time `json:"last_login,omitempty"`  // Last time the user logged in
	Verified    bool      `json:"verified,omitempty"`    // Has the user verified their email
	Blocked     bool      `json:"blocked,omitempty"`     // Has the user been blocked from logging in
	SponsorOrg  string    `json:"sponsor_org,omitempty"` // Sponsor's organisation, sponsors only
	TeamID      string    `json:"team_id,omitempty"`     // Current team, participants only
	DisplayName string    `json:"display_name,omitempty"`
}

// ParsedRole returns the user's role as a validated enum value. The boolean
// is false when the wire value is not a known role.
func (u *User) ParsedRole() (Role, bool) {
	return ParseRole(u.Role)
}

// HasRole reports whether the user's validated role equals r.
func (u *User) HasRole(r Role) bool {
	role, ok := u.ParsedRole()
	return ok && role == r
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// FullName returns the user's display name, falling back to first/last name
// and then to the username.
func (u *User) FullName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.FirstName != "" || u.LastName != "" {
		if u.FirstName == "" {
			return u.LastName
		}
		if u.LastName == "" {
			return u.FirstName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
