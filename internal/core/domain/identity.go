package domain

import "errors"

// Role is the application-level role stored on a user profile.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed sign-in attempts")
)

// Identity is the resolved application user: the session subject id merged
// with the profile record held in the document store. An Identity exists only
// when the session is authenticated AND the profile lookup succeeded; callers
// represent "absent" as a nil *Identity.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FullName  string `json:"full_name"`
}

// Profile is the raw users/{id} record as persisted. The subject id is the
// document key, assigned by the session store at provisioning time.
type Profile struct {
	SubjectID string
	Email     string
	Role      Role
	FullName  string
}
