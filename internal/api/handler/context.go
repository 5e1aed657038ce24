package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/api/middleware"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

// ctxActor extracts the acting identity placed on the context by the
// session middleware. Gated routes guarantee an identity is present; its
// absence here means the route was wired without the gate, so reject with
// 401 instead of passing a zero actor to the service.
func ctxActor(c echo.Context) (ports.Actor, error) {
	identity := middleware.Identity(c)
	if identity == nil {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return ports.Actor{SubjectID: identity.SubjectID, Role: identity.Role}, nil
}
