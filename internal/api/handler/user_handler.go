package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// UserHandler handles account provisioning.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type provisionUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	Role     string `json:"role"      validate:"required,oneof=admin coordinator"`
	FullName string `json:"full_name" validate:"required"`
}

// Provision creates a credential and its matching profile record.
//
// @Summary      Provision a user account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      provisionUserRequest  true  "Account details"
// @Success      201   {object}  domain.Identity
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/users [post]
func (h *UserHandler) Provision(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req provisionUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.service.Provision(c.Request().Context(), actor, ports.ProvisionUserInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, identity)
}
