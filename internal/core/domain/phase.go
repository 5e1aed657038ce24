package domain

import (
	"errors"
	"time"
)

// PhaseStatus is the review state of an accreditation phase.
type PhaseStatus string

const (
	StatusPending  PhaseStatus = "pending"
	StatusApproved PhaseStatus = "approved"
	StatusRejected PhaseStatus = "rejected"
)

// Valid reports whether s is one of the three known statuses. Any status may
// follow any other; there is deliberately no transition table, and setting
// the current status again is a no-op success.
func (s PhaseStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

var (
	ErrPhaseNotFound = errors.New("phase not found")
	ErrInvalidStatus = errors.New("invalid phase status")
)

// Phase is one step of the accreditation workflow. Created and approved or
// rejected by administrators; coordinators attach an evidence link. Phases
// are never deleted.
type Phase struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       PhaseStatus `json:"status"`
	LinkResponse string      `json:"link_response"`
	CreatedAt    time.Time   `json:"created_at"`
}
