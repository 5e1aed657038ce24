package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ssea/accreditation-api/internal/api/metrics"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// IdentityResolver turns a session subject id into an application identity
// by fetching the matching profile record from the document store.
type IdentityResolver struct {
	profiles ports.ProfileRepository
	logger   zerolog.Logger
}

func NewIdentityResolver(profiles ports.ProfileRepository, logger zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{profiles: profiles, logger: logger}
}

// Resolve returns the identity for subjectID, or nil when it cannot be
// established. A missing profile is a recoverable anomaly (provisioning may
// not have completed yet) and a store failure must not leak past this
// boundary, so both are logged and collapse to nil. The effective identity
// being absent means the caller treats the session as signed out.
func (r *IdentityResolver) Resolve(ctx context.Context, subjectID string) *domain.Identity {
	if subjectID == "" {
		return nil
	}

	profile, err := r.profiles.FindBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			metrics.SessionResolutionsTotal.WithLabelValues("profile_missing").Inc()
			r.logger.Warn().Str("subject_id", subjectID).Msg("no profile record for authenticated session")
		} else {
			metrics.SessionResolutionsTotal.WithLabelValues("store_error").Inc()
			r.logger.Error().Err(err).Str("subject_id", subjectID).Msg("profile lookup failed")
		}
		return nil
	}

	metrics.SessionResolutionsTotal.WithLabelValues("resolved").Inc()
	return &domain.Identity{
		SubjectID: subjectID,
		Email:     profile.Email,
		Role:      profile.Role,
		FullName:  profile.FullName,
	}
}
