package handler

import (
	"time"

	"github.com/ssea/accreditation-api/internal/core/domain"
)

// --- Request / Response types ---

type createPhaseRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type setLinkRequest struct {
	// The link is freely editable text; no URL-format enforcement beyond
	// what the input widget hints at.
	Link string `json:"link"`
}

// Response types owned by the transport layer, intentionally separate from
// the domain types so the JSON contract is not coupled to internal changes.

type phaseResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	LinkResponse string    `json:"link_response"`
	CreatedAt    time.Time `json:"created_at"`
}

type listPhasesResponse struct {
	Data []phaseResponse `json:"data"`
}

func toPhaseResponse(p domain.Phase) phaseResponse {
	return phaseResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Status:       string(p.Status),
		LinkResponse: p.LinkResponse,
		CreatedAt:    p.CreatedAt,
	}
}

func toListResponse(phases []domain.Phase) listPhasesResponse {
	items := make([]phaseResponse, 0, len(phases))
	for _, p := range phases {
		items = append(items, toPhaseResponse(p))
	}
	return listPhasesResponse{Data: items}
}

type auditEntryResponse struct {
	Action     string    `json:"action"`
	SubjectID  string    `json:"subject_id"`
	Role       string    `json:"role"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type auditTrailResponse struct {
	Data []auditEntryResponse `json:"data"`
}

func toAuditTrailResponse(entries []domain.AuditEntry) auditTrailResponse {
	items := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditEntryResponse{
			Action:     string(e.Action),
			SubjectID:  e.SubjectID,
			Role:       string(e.Role),
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		})
	}
	return auditTrailResponse{Data: items}
}
