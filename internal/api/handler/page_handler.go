package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/api/middleware"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// PageHandler serves the browser-facing routes. The dashboards are gated by
// the Page middleware before these handlers run; the fixed redirect rules
// (role home instead of the login form for authenticated sessions, `/` and
// unmatched paths to the role home or sign-in) live here.
type PageHandler struct {
	phases ports.PhaseService
}

func NewPageHandler(phases ports.PhaseService) *PageHandler {
	return &PageHandler{phases: phases}
}

type dashboardResponse struct {
	Identity *domain.Identity `json:"identity"`
	Phases   []phaseResponse  `json:"phases"`
}

// Root handles GET / and every unmatched path: authenticated identities go
// to their role home, everyone else to sign-in.
func (h *PageHandler) Root(c echo.Context) error {
	if identity := middleware.Identity(c); identity != nil {
		return c.Redirect(http.StatusFound, domain.HomePath(identity.Role))
	}
	return c.Redirect(http.StatusFound, "/login")
}

// Login handles GET /login. An authenticated identity never sees the form:
// it is sent to its role home instead.
func (h *PageHandler) Login(c echo.Context) error {
	if identity := middleware.Identity(c); identity != nil {
		return c.Redirect(http.StatusFound, domain.HomePath(identity.Role))
	}
	return c.JSON(http.StatusOK, map[string]string{
		"view":   "login",
		"submit": "/v1/auth/login",
	})
}

// Dashboard serves GET /admin and GET /coordinator. The gate has already
// admitted the identity; both views are the phase list, the role decides
// which mutations the client may offer.
func (h *PageHandler) Dashboard(c echo.Context) error {
	identity := middleware.Identity(c)
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	phases, err := h.phases.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Identity: identity,
		Phases:   toListResponse(phases).Data,
	})
}

// Unauthorized serves GET /unauthorized, the static rejection view.
func (h *PageHandler) Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{
		"view":    "unauthorized",
		"message": "you do not have permission to access this page",
	})
}
