package ports

import (
	"context"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// AuditRecorder accepts audit entries for asynchronous persistence. Record
// must not block the caller beyond queueing.
type AuditRecorder interface {
	Record(entry domain.AuditEntry)
}

// AuditRepository persists and reads the phase audit log.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error

	// ListByPhase returns the newest entries for a phase, most recent first.
	ListByPhase(ctx context.Context, phaseID string, limit int64) ([]domain.AuditEntry, error)
}
