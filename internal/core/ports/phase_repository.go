package ports

import (
	"context"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// PhaseRepository defines persistence operations for phases. Updates are
// unconditional last-write-wins overwrites; the store performs no
// concurrency control on documents.
type PhaseRepository interface {
	// Insert stores a new phase and fills in its store-assigned ID.
	Insert(ctx context.Context, p *domain.Phase) error
	// List returns the entire collection. Ordering is not guaranteed to be
	// stable across calls.
	List(ctx context.Context) ([]domain.Phase, error)
	FindByID(ctx context.Context, id string) (*domain.Phase, error)
	// UpdateStatus overwrites the status field; domain.ErrPhaseNotFound when
	// no document matches.
	UpdateStatus(ctx context.Context, id string, status domain.PhaseStatus) error
	// UpdateLink overwrites the linkResponse field.
	UpdateLink(ctx context.Context, id, link string) error
}
