package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssea/accreditation-api/internal/api/metrics"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

const auditTrailLimit = 50

// PhaseService implements the phase management use cases. Role checks live
// here as well as at the route gate: a caller that never passes a gated
// route still cannot mutate outside its role.
type PhaseService struct {
	repo   ports.PhaseRepository
	audit  ports.AuditRecorder
	trail  ports.AuditRepository
	logger zerolog.Logger
}

func NewPhaseService(repo ports.PhaseRepository, audit ports.AuditRecorder, trail ports.AuditRepository, logger zerolog.Logger) *PhaseService {
	return &PhaseService{repo: repo, audit: audit, trail: trail, logger: logger}
}

// List returns the whole collection. Both roles may read; ordering is
// whatever the store returns.
func (s *PhaseService) List(ctx context.Context, actor ports.Actor) ([]domain.Phase, error) {
	if !actor.Role.Valid() {
		return nil, domain.ErrForbidden
	}
	phases, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list phases")
		return nil, err
	}
	return phases, nil
}

// Create stores a new phase. Administrator only. Status and evidence link
// are forced to their defaults regardless of input content.
func (s *PhaseService) Create(ctx context.Context, actor ports.Actor, input ports.CreatePhaseInput) (*domain.Phase, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	phase := &domain.Phase{
		Title:        input.Title,
		Description:  input.Description,
		Status:       domain.StatusPending,
		LinkResponse: "",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, phase); err != nil {
		s.logger.Error().Err(err).Msg("failed to create phase")
		return nil, err
	}

	s.record(actor, phase.ID, domain.AuditPhaseCreated, phase.Title)
	metrics.PhaseMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("phase_id", phase.ID).Str("subject_id", actor.SubjectID).Msg("phase created")
	return phase, nil
}

// SetStatus overwrites the status unconditionally. Administrator only.
// There is no transition table: any status may follow any other, and
// re-applying the current status succeeds as a no-op.
func (s *PhaseService) SetStatus(ctx context.Context, actor ports.Actor, id string, status domain.PhaseStatus) (*domain.Phase, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.record(actor, id, domain.AuditStatusChanged, string(status))
	metrics.PhaseMutationsTotal.WithLabelValues("set_status").Inc()
	s.logger.Info().Str("phase_id", id).Str("status", string(status)).Str("subject_id", actor.SubjectID).Msg("phase status updated")
	return s.repo.FindByID(ctx, id)
}

// SetLink overwrites the evidence link unconditionally. Coordinator only.
// The link is freely editable text; concurrent edits are last-write-wins.
func (s *PhaseService) SetLink(ctx context.Context, actor ports.Actor, id, link string) (*domain.Phase, error) {
	if actor.Role != domain.RoleCoordinator {
		return nil, domain.ErrForbidden
	}

	if err := s.repo.UpdateLink(ctx, id, link); err != nil {
		return nil, err
	}

	s.record(actor, id, domain.AuditLinkChanged, link)
	metrics.PhaseMutationsTotal.WithLabelValues("set_link").Inc()
	s.logger.Info().Str("phase_id", id).Str("subject_id", actor.SubjectID).Msg("phase link updated")
	return s.repo.FindByID(ctx, id)
}

// AuditTrail returns the newest audit entries for one phase. Administrator
// only. The phase must exist.
func (s *PhaseService) AuditTrail(ctx context.Context, actor ports.Actor, id string) ([]domain.AuditEntry, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.trail.ListByPhase(ctx, id, auditTrailLimit)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	return entries, nil
}

func (s *PhaseService) record(actor ports.Actor, phaseID string, action domain.AuditAction, detail string) {
	s.audit.Record(domain.AuditEntry{
		PhaseID:    phaseID,
		Action:     action,
		SubjectID:  actor.SubjectID,
		Role:       actor.Role,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
}
