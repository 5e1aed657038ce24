package domain

import "time"

// AuditAction identifies what a recorded mutation did.
type AuditAction string

const (
	AuditPhaseCreated  AuditAction = "phase_created"
	AuditStatusChanged AuditAction = "status_changed"
	AuditLinkChanged   AuditAction = "link_changed"
)

// AuditEntry records a single phase mutation and who performed it.
type AuditEntry struct {
	PhaseID    string
	Action     AuditAction
	SubjectID  string
	Role       Role
	Detail     string
	OccurredAt time.Time
}
