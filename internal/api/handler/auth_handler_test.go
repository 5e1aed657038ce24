package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/api/middleware"
	"github.com/ssea/accreditation-api/internal/core/domain"
)

type stubController struct {
	token    string
	identity *domain.Identity
	signErr  error
	signOuts []string
}

func (s *stubController) SignIn(_ context.Context, _, _ string) (string, *domain.Identity, error) {
	if s.signErr != nil {
		return "", nil, s.signErr
	}
	return s.token, s.identity, nil
}

func (s *stubController) SignOut(_ context.Context, token string) error {
	s.signOuts = append(s.signOuts, token)
	return nil
}

func newAuthContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	controller := &stubController{
		token: "tok1",
		identity: &domain.Identity{
			SubjectID: "u1",
			Email:     "ana@uni.edu",
			Role:      domain.RoleAdmin,
			FullName:  "Ana Torres",
		},
	}
	h := NewAuthHandler(controller, 3600)

	c, rec := newAuthContext(t, http.MethodPost, "/v1/auth/login", `{"email":"ana@uni.edu","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token string `json:"token"`
		Home  string `json:"home"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "tok1" {
		t.Fatalf("token = %q", resp.Token)
	}
	if resp.Home != "/admin" {
		t.Fatalf("home = %q, want /admin", resp.Home)
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	controller := &stubController{signErr: domain.ErrInvalidCredentials}
	h := NewAuthHandler(controller, 3600)

	c, _ := newAuthContext(t, http.MethodPost, "/v1/auth/login", `{"email":"ana@uni.edu","password":"wrong"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_UnprovisionedAccountRevokedAndRejected(t *testing.T) {
	// Credentials verified but no profile resolved: the session must be
	// revoked and the caller sees the same generic rejection.
	controller := &stubController{token: "tok2", identity: nil}
	h := NewAuthHandler(controller, 3600)

	c, _ := newAuthContext(t, http.MethodPost, "/v1/auth/login", `{"email":"new@uni.edu","password":"secret"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(controller.signOuts) != 1 || controller.signOuts[0] != "tok2" {
		t.Fatalf("session not revoked: %v", controller.signOuts)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubController{}, 3600)

	c, _ := newAuthContext(t, http.MethodPost, "/v1/auth/login", `{"email":"not-an-email"}`)
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	controller := &stubController{}
	h := NewAuthHandler(controller, 3600)

	c, rec := newAuthContext(t, http.MethodPost, "/v1/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer tok1")
	if err := h.Logout(c); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(controller.signOuts) != 1 || controller.signOuts[0] != "tok1" {
		t.Fatalf("sign out not delegated: %v", controller.signOuts)
	}
}

func TestAuthHandler_Current(t *testing.T) {
	h := NewAuthHandler(&stubController{}, 3600)

	c, rec := newAuthContext(t, http.MethodGet, "/v1/auth/session", "")
	c.Set(middleware.IdentityKey, &domain.Identity{SubjectID: "u1", Role: domain.RoleCoordinator})
	if err := h.Current(c); err != nil {
		t.Fatalf("current: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c2, _ := newAuthContext(t, http.MethodGet, "/v1/auth/session", "")
	c2.Set(middleware.IdentityKey, (*domain.Identity)(nil))
	err := h.Current(c2)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
