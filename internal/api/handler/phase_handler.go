package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// PhaseHandler handles HTTP requests for phase operations.
type PhaseHandler struct {
	service ports.PhaseService
}

func NewPhaseHandler(service ports.PhaseService) *PhaseHandler {
	return &PhaseHandler{service: service}
}

// List handles GET /v1/phases.
//
// @Summary      List all phases
// @Tags         phases
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listPhasesResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/phases [get]
func (h *PhaseHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	phases, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(phases))
}

// Create handles POST /v1/phases.
//
// @Summary      Create a phase
// @Tags         phases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPhaseRequest  true  "Phase details"
// @Success      201   {object}  phaseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/phases [post]
func (h *PhaseHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createPhaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	phase, err := h.service.Create(c.Request().Context(), actor, ports.CreatePhaseInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toPhaseResponse(*phase))
}

// SetStatus handles PUT /v1/phases/:id/status.
//
// @Summary      Set phase status
// @Tags         phases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Phase id"
// @Param        body  body      setStatusRequest  true  "New status"
// @Success      200   {object}  phaseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/phases/{id}/status [put]
func (h *PhaseHandler) SetStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	phase, err := h.service.SetStatus(c.Request().Context(), actor, c.Param("id"), domain.PhaseStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPhaseResponse(*phase))
}

// SetLink handles PUT /v1/phases/:id/link.
//
// @Summary      Set phase evidence link
// @Tags         phases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Phase id"
// @Param        body  body      setLinkRequest  true  "Evidence link"
// @Success      200   {object}  phaseResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/phases/{id}/link [put]
func (h *PhaseHandler) SetLink(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req setLinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	phase, err := h.service.SetLink(c.Request().Context(), actor, c.Param("id"), req.Link)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPhaseResponse(*phase))
}

// Audit handles GET /v1/phases/:id/audit.
//
// @Summary      Phase audit trail
// @Tags         phases
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Phase id"
// @Success      200  {object}  auditTrailResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/phases/{id}/audit [get]
func (h *PhaseHandler) Audit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	entries, err := h.service.AuditTrail(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditTrailResponse(entries))
}
