package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ssea/accreditation-api/internal/api/metrics"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// SessionController bridges the session store's change notifications into
// application identity state. It owns the single subscription to the event
// stream, resolves every observed subject through the identity resolver, and
// keeps the resulting identity snapshots for the route gate to consult.
//
// Sign-in results flow through the same event path as listener
// notifications, so the two can never disagree.
type SessionController struct {
	store    ports.SessionStore
	resolver ports.IdentityResolver
	logger   zerolog.Logger

	mu      sync.Mutex
	state   ports.SessionState
	seq     uint64            // monotonically increasing event sequence
	applied map[string]uint64 // subject -> seq of last applied resolution
	cache   map[string]*domain.Identity
	unsub   ports.Unsubscribe
}

func NewSessionController(store ports.SessionStore, resolver ports.IdentityResolver, logger zerolog.Logger) *SessionController {
	return &SessionController{
		store:    store,
		resolver: resolver,
		logger:   logger,
		state:    ports.StateLoading,
		applied:  make(map[string]uint64),
		cache:    make(map[string]*domain.Identity),
	}
}

// Start subscribes to the session store. Calling Start on an already
// started controller is a bug and returns an error rather than stacking a
// second subscription.
//
// The store only forwards transitions that happen after the subscription,
// so Start applies the current state (no session observed) itself. Without
// it the controller would sit in loading until some user signed in, and the
// gate would refuse to decide anything.
func (c *SessionController) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.unsub != nil {
		c.mu.Unlock()
		return errors.New("session controller already started")
	}
	c.mu.Unlock()

	unsub, err := c.store.Subscribe(ctx, func(ev ports.SessionEvent) {
		c.apply(ctx, ev)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()

	c.apply(ctx, ports.SessionEvent{})
	return nil
}

// Close releases the subscription. Idempotent.
func (c *SessionController) Close() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// State returns the controller lifecycle state. While StateLoading the gate
// must not render a route decision; loading is terminal-once and never
// re-entered after the first event has been applied.
func (c *SessionController) State() ports.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SignIn verifies credentials with the session store and routes the
// resulting session event through the same path the listener uses. The
// returned identity is nil when the session authenticated but no profile
// resolved.
func (c *SessionController) SignIn(ctx context.Context, email, password string) (string, *domain.Identity, error) {
	token, subjectID, err := c.store.SignIn(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	identity := c.apply(ctx, ports.SessionEvent{SubjectID: subjectID})
	return token, identity, nil
}

// SignOut revokes the session, evicts the cached identity, and transitions
// to ready-anonymous. The eviction runs through the local event path rather
// than waiting on the store's published sign-out event, which is delivered
// best-effort.
func (c *SessionController) SignOut(ctx context.Context, token string) error {
	subjectID, _ := c.store.Verify(ctx, token)
	if err := c.store.SignOut(ctx, token); err != nil {
		return err
	}
	c.apply(ctx, ports.SessionEvent{SubjectID: subjectID, SignedOut: true})
	return nil
}

// Current returns the identity snapshot for subjectID, resolving it through
// the event path on a cache miss.
func (c *SessionController) Current(ctx context.Context, subjectID string) *domain.Identity {
	if subjectID == "" {
		return nil
	}
	c.mu.Lock()
	if identity, ok := c.cache[subjectID]; ok {
		c.mu.Unlock()
		return identity
	}
	c.mu.Unlock()
	return c.apply(ctx, ports.SessionEvent{SubjectID: subjectID})
}

// apply processes one session event: sign-outs clear state immediately,
// sign-ins resolve the subject's identity. Two resolutions for the same
// subject may race; the one triggered by the later event wins, an earlier
// in-flight result is discarded (last-write-wins on identity state).
func (c *SessionController) apply(ctx context.Context, ev ports.SessionEvent) *domain.Identity {
	c.mu.Lock()
	c.seq++
	seq := c.seq

	if ev.SignedOut || ev.SubjectID == "" {
		if ev.SignedOut {
			metrics.SessionEventsTotal.WithLabelValues("sign_out").Inc()
		}
		if ev.SubjectID != "" {
			c.applied[ev.SubjectID] = seq
			delete(c.cache, ev.SubjectID)
		}
		c.state = ports.StateReadyAnonymous
		c.mu.Unlock()
		return nil
	}

	c.state = ports.StateResolving
	c.mu.Unlock()

	metrics.SessionEventsTotal.WithLabelValues("sign_in").Inc()
	identity := c.resolver.Resolve(ctx, ev.SubjectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.applied[ev.SubjectID] {
		// A later event for this subject already landed; keep its result.
		return c.cache[ev.SubjectID]
	}
	c.applied[ev.SubjectID] = seq
	if identity == nil {
		delete(c.cache, ev.SubjectID)
		c.state = ports.StateReadyAnonymous
		return nil
	}
	c.cache[ev.SubjectID] = identity
	c.state = ports.StateReadyAuthenticated
	return identity
}
