package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// verifyOnlyStore implements ports.SessionStore with a fixed token table;
// only Verify matters to the session middleware.
type verifyOnlyStore struct {
	tokens map[string]string // token -> subjectID
}

func (s *verifyOnlyStore) SignIn(context.Context, string, string) (string, string, error) {
	return "", "", domain.ErrInvalidCredentials
}

func (s *verifyOnlyStore) SignOut(context.Context, string) error { return nil }

func (s *verifyOnlyStore) Verify(_ context.Context, token string) (string, error) {
	subject, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrSessionExpired
	}
	return subject, nil
}

func (s *verifyOnlyStore) Subscribe(context.Context, func(ports.SessionEvent)) (ports.Unsubscribe, error) {
	return func() {}, nil
}

func identityFor(subjectID string) *domain.Identity {
	return &domain.Identity{SubjectID: subjectID, Role: domain.RoleAdmin}
}

func runSession(t *testing.T, store ports.SessionStore, decorate func(*http.Request)) *domain.Identity {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured *domain.Identity
	mw := Session(store, func(_ echo.Context, subjectID string) *domain.Identity {
		return identityFor(subjectID)
	})
	handler := mw(func(c echo.Context) error {
		captured = Identity(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return captured
}

func TestSession_NoTokenIsAnonymous(t *testing.T) {
	store := &verifyOnlyStore{tokens: map[string]string{}}
	if identity := runSession(t, store, nil); identity != nil {
		t.Fatalf("expected nil identity, got %+v", identity)
	}
}

func TestSession_BearerToken(t *testing.T) {
	store := &verifyOnlyStore{tokens: map[string]string{"tok1": "u1"}}
	identity := runSession(t, store, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer tok1")
	})
	if identity == nil || identity.SubjectID != "u1" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestSession_CookieFallback(t *testing.T) {
	store := &verifyOnlyStore{tokens: map[string]string{"tok2": "u2"}}
	identity := runSession(t, store, func(req *http.Request) {
		req.AddCookie(SessionCookie("tok2", 60))
	})
	if identity == nil || identity.SubjectID != "u2" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestSession_ExpiredTokenIsAnonymous(t *testing.T) {
	store := &verifyOnlyStore{tokens: map[string]string{}}
	identity := runSession(t, store, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer revoked")
	})
	if identity != nil {
		t.Fatalf("expected nil identity for revoked token, got %+v", identity)
	}
}

func TestSession_MalformedHeaderIsAnonymous(t *testing.T) {
	store := &verifyOnlyStore{tokens: map[string]string{"tok1": "u1"}}
	identity := runSession(t, store, func(req *http.Request) {
		req.Header.Set("Authorization", "Token tok1")
	})
	if identity != nil {
		t.Fatalf("expected nil identity for malformed header, got %+v", identity)
	}
}
