package ports

import "context"

// SessionEvent is one notification on the session change stream. SubjectID
// is empty when the event reports a sign-out (the session-store analog of a
// null auth-state callback).
type SessionEvent struct {
	SubjectID string `json:"subject_id"`
	SignedOut bool   `json:"signed_out"`
}

// Unsubscribe releases a session event subscription. Safe to call once; the
// subscription must not outlive its owner.
type Unsubscribe func()

// SessionStore is the external identity-provider abstraction: it verifies
// credentials, issues and revokes session tokens, and notifies subscribers
// of sign-in/sign-out transitions.
type SessionStore interface {
	// SignIn verifies credentials and issues a session token. Unknown
	// account and bad password both return domain.ErrInvalidCredentials;
	// callers must not be able to tell them apart.
	SignIn(ctx context.Context, email, password string) (token, subjectID string, err error)

	// SignOut revokes the session behind token and publishes a sign-out
	// event. Revoking an already-revoked token is not an error.
	SignOut(ctx context.Context, token string) error

	// Verify validates token and returns the session subject id, or
	// domain.ErrSessionExpired when the token is invalid or revoked.
	Verify(ctx context.Context, token string) (subjectID string, err error)

	// Subscribe registers onChange for session events. At most one
	// subscription per subscriber; the returned Unsubscribe must be called
	// on teardown and on every error path.
	Subscribe(ctx context.Context, onChange func(SessionEvent)) (Unsubscribe, error)
}
