package ports

import (
	"context"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// Actor identifies who is performing a phase operation. Role is checked in
// the service layer, not only at the route gate, so a caller that bypasses
// the UI routes still cannot perform mutations outside its role.
type Actor struct {
	SubjectID string
	Role      domain.Role
}

// CreatePhaseInput carries the administrator-supplied fields for a new
// phase. Status and evidence link are always defaulted, never taken from
// input.
type CreatePhaseInput struct {
	Title       string
	Description string
}

// PhaseService defines the phase management use cases.
type PhaseService interface {
	List(ctx context.Context, actor Actor) ([]domain.Phase, error)
	Create(ctx context.Context, actor Actor, input CreatePhaseInput) (*domain.Phase, error)
	// SetStatus overwrites the status unconditionally. Any status may follow
	// any other, including the same one (a no-op success).
	SetStatus(ctx context.Context, actor Actor, id string, status domain.PhaseStatus) (*domain.Phase, error)
	// SetLink overwrites the evidence link unconditionally.
	SetLink(ctx context.Context, actor Actor, id, link string) (*domain.Phase, error)
	// AuditTrail returns the newest audit entries for one phase.
	// Administrator only.
	AuditTrail(ctx context.Context, actor Actor, id string) ([]domain.AuditEntry, error)
}

// ProvisionUserInput carries the fields needed to provision a credential and
// its matching profile.
type ProvisionUserInput struct {
	Email    string
	Password string
	Role     domain.Role
	FullName string
}

// UserService provisions accounts: the administrative analog of creating a
// user in the identity provider's console plus its profile record.
type UserService interface {
	Provision(ctx context.Context, actor Actor, input ProvisionUserInput) (*domain.Identity, error)
}
