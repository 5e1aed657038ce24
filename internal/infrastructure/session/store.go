// Package session implements the session store against Redis: bcrypt
// credential verification, JWT session tokens with a revocable Redis record,
// and a pub/sub channel that broadcasts sign-in/sign-out transitions.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
	redisdb "github.com/ssea/accreditation-api/internal/infrastructure/db/redis"
)

const (
	keyPrefix  = "session:"
	eventsChan = "session_events"

	defaultTTL = 24 * time.Hour
)

// Store implements ports.SessionStore. A session is a signed JWT whose jti
// claim points at a Redis record with the session TTL; deleting the record
// revokes the token before its exp. Sign-in and sign-out publish events on
// a pub/sub channel so every subscriber process observes the transition,
// not just the one that served the request.
type Store struct {
	credentials ports.CredentialRepository
	rdb         *redis.Client
	throttle    *redisdb.LoginThrottle
	jwtSecret   string
	ttl         time.Duration
	logger      zerolog.Logger
}

func NewStore(credentials ports.CredentialRepository, rdb *redis.Client, throttle *redisdb.LoginThrottle, jwtSecret string, ttl time.Duration, logger zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{
		credentials: credentials,
		rdb:         rdb,
		throttle:    throttle,
		jwtSecret:   jwtSecret,
		ttl:         ttl,
		logger:      logger,
	}
}

// SignIn verifies credentials and issues a session token. Unknown account
// and wrong password both collapse to domain.ErrInvalidCredentials, and both
// count against the per-email failure budget.
func (s *Store) SignIn(ctx context.Context, email, password string) (string, string, error) {
	if email == "" || password == "" {
		return "", "", domain.ErrInvalidCredentials
	}

	if blocked, err := s.throttle.TooMany(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("throttle check failed")
	} else if blocked {
		return "", "", domain.ErrTooManyAttempts
	}

	cred, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			s.countFailure(ctx, email)
		}
		return "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		s.countFailure(ctx, email)
		return "", "", domain.ErrInvalidCredentials
	}

	if err := s.throttle.Clear(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("throttle reset failed")
	}

	sessionID := uuid.NewString()
	token, err := s.mintToken(cred.SubjectID, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("mint token: %w", err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+sessionID, cred.SubjectID, s.ttl).Err(); err != nil {
		return "", "", fmt.Errorf("store session: %w", err)
	}
	s.publish(ctx, ports.SessionEvent{SubjectID: cred.SubjectID})

	return token, cred.SubjectID, nil
}

// SignOut revokes the session behind token and publishes the sign-out
// event. An already-invalid token is not an error.
func (s *Store) SignOut(ctx context.Context, token string) error {
	subjectID, sessionID, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.publish(ctx, ports.SessionEvent{SubjectID: subjectID, SignedOut: true})
	return nil
}

// Verify validates the token signature and checks the session record still
// exists, returning the subject id.
func (s *Store) Verify(ctx context.Context, token string) (string, error) {
	subjectID, sessionID, err := s.parseToken(token)
	if err != nil {
		return "", domain.ErrSessionExpired
	}

	n, err := s.rdb.Exists(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	if n == 0 {
		return "", domain.ErrSessionExpired
	}
	return subjectID, nil
}

// Subscribe consumes the session event channel until unsubscribed. The
// returned Unsubscribe closes the pub/sub connection and is idempotent.
func (s *Store) Subscribe(ctx context.Context, onChange func(ports.SessionEvent)) (ports.Unsubscribe, error) {
	pubsub := s.rdb.Subscribe(ctx, eventsChan)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe sessions: %w", err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var ev ports.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.logger.Warn().Err(err).Msg("malformed session event")
				continue
			}
			onChange(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { _ = pubsub.Close() })
	}, nil
}

func (s *Store) countFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("throttle record failed")
	}
}

func (s *Store) publish(ctx context.Context, ev ports.SessionEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, eventsChan, payload).Err(); err != nil {
		// Delivery to other processes is best-effort; the local caller has
		// already routed the transition through the controller.
		s.logger.Warn().Err(err).Msg("session event publish failed")
	}
}

func (s *Store) mintToken(subjectID, sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		ID:        sessionID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *Store) parseToken(token string) (subjectID, sessionID string, err error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", "", domain.ErrSessionExpired
	}
	if claims.Subject == "" || claims.ID == "" {
		return "", "", domain.ErrSessionExpired
	}
	return claims.Subject, claims.ID, nil
}
