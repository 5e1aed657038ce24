package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/api/metrics"
	"github.com/ssea/accreditation-api/internal/api/middleware"
	"github.com/ssea/accreditation-api/internal/core/domain"
)

// SessionController is the slice of the session lifecycle controller the
// auth handler needs.
type SessionController interface {
	SignIn(ctx context.Context, email, password string) (string, *domain.Identity, error)
	SignOut(ctx context.Context, token string) error
}

// AuthHandler handles sign-in, sign-out, and the who-am-I read.
type AuthHandler struct {
	controller SessionController
	cookieTTL  int
}

func NewAuthHandler(controller SessionController, cookieTTLSeconds int) *AuthHandler {
	return &AuthHandler{controller: controller, cookieTTL: cookieTTLSeconds}
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Identity *domain.Identity `json:"identity"`
	Home     string           `json:"home"`
}

// Login authenticates credentials and issues a session token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.controller.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.SignInsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}
	if identity == nil {
		// Credentials checked out but no profile resolved: the session is
		// not usable, so revoke it and answer with the same generic
		// rejection as a bad password.
		metrics.SignInsTotal.WithLabelValues("unprovisioned").Inc()
		_ = h.controller.SignOut(c.Request().Context(), token)
		return domain.ErrInvalidCredentials
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	c.SetCookie(middleware.SessionCookie(token, h.cookieTTL))
	return c.JSON(http.StatusOK, loginResponse{
		Token:    token,
		Identity: identity,
		Home:     domain.HomePath(identity.Role),
	})
}

// Logout revokes the current session.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      204  "revoked"
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token := middleware.Token(c); token != "" {
		if err := h.controller.SignOut(c.Request().Context(), token); err != nil {
			return err
		}
	}
	c.SetCookie(middleware.SessionCookie("", -1))
	return c.NoContent(http.StatusNoContent)
}

// Current returns the identity behind the presented session token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/session [get]
func (h *AuthHandler) Current(c echo.Context) error {
	identity := middleware.Identity(c)
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, identity)
}
