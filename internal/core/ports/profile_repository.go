package ports

import (
	"context"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// ProfileRepository reads and writes the users collection in the document
// store.
type ProfileRepository interface {
	// FindBySubject returns the profile keyed by the session subject id, or
	// domain.ErrProfileNotFound.
	FindBySubject(ctx context.Context, subjectID string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) error
}

// Credential is a record held by the session store: the subject id it will
// report for a session plus the password hash it verifies against. Profiles
// and credentials are provisioned together but read independently, which is
// why a session can exist without a resolvable profile.
type Credential struct {
	SubjectID    string
	Email        string
	PasswordHash string
}

// CredentialRepository is the session store's persistence for credentials.
type CredentialRepository interface {
	// FindByEmail returns the credential for email, or
	// domain.ErrInvalidCredentials when no such account exists.
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	// Create inserts a credential; domain.ErrUserExists on a duplicate email.
	Create(ctx context.Context, c *Credential) error
}
