package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// UserService provisions accounts: a credential record for the session
// store and the matching profile record in the users collection. There is
// no transaction across the two writes; a credential without a profile is
// the documented "provisioning not yet complete" state and resolves to an
// absent identity until the profile lands.
type UserService struct {
	credentials ports.CredentialRepository
	profiles    ports.ProfileRepository
	logger      zerolog.Logger
}

func NewUserService(credentials ports.CredentialRepository, profiles ports.ProfileRepository, logger zerolog.Logger) *UserService {
	return &UserService{credentials: credentials, profiles: profiles, logger: logger}
}

// Provision creates the credential and profile for a new account.
// Administrator only.
func (s *UserService) Provision(ctx context.Context, actor ports.Actor, input ports.ProvisionUserInput) (*domain.Identity, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if input.Email == "" || input.Password == "" || !input.Role.Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	subjectID := uuid.NewString()
	if err := s.credentials.Create(ctx, &ports.Credential{
		SubjectID:    subjectID,
		Email:        input.Email,
		PasswordHash: string(hash),
	}); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		SubjectID: subjectID,
		Email:     input.Email,
		Role:      input.Role,
		FullName:  input.FullName,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Credential exists without a profile: recoverable, the account
		// simply resolves to absent until re-provisioned.
		s.logger.Error().Err(err).Str("subject_id", subjectID).Msg("profile write failed after credential create")
		return nil, err
	}

	s.logger.Info().Str("subject_id", subjectID).Str("role", string(input.Role)).Msg("user provisioned")
	return &domain.Identity{
		SubjectID: subjectID,
		Email:     input.Email,
		Role:      input.Role,
		FullName:  input.FullName,
	}, nil
}
