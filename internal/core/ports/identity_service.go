package ports

import (
	"context"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// IdentityResolver maps a session subject id to an application identity.
type IdentityResolver interface {
	// Resolve returns the identity for subjectID, or nil when no profile is
	// found or the profile lookup failed. The two cases are deliberately
	// indistinguishable to callers; Resolve never returns an error.
	Resolve(ctx context.Context, subjectID string) *domain.Identity
}

// SessionState is the lifecycle state of the session controller.
type SessionState int32

const (
	// StateLoading holds from construction until the first session event has
	// been fully applied. The controller never re-enters it.
	StateLoading SessionState = iota
	// StateResolving means a session event was observed and its identity
	// resolution is in flight.
	StateResolving
	StateReadyAuthenticated
	StateReadyAnonymous
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResolving:
		return "resolving"
	case StateReadyAuthenticated:
		return "ready-authenticated"
	case StateReadyAnonymous:
		return "ready-anonymous"
	default:
		return "unknown"
	}
}
