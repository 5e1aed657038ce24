package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/api/metrics"
	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

const (
	signInPath       = "/login"
	unauthorizedPath = "/unauthorized"
)

// Gate enforces route authorization. Every route decision funnels through
// domain.Authorize with the identity snapshot the Session middleware left on
// the context; handlers never re-implement the role check. While the session
// controller is still loading, no decision is rendered at all and callers
// get a retryable waiting response.
type Gate struct {
	state func() ports.SessionState
}

func NewGate(state func() ports.SessionState) *Gate {
	return &Gate{state: state}
}

// Require gates an API route: absent identity yields 401, a role outside
// the required set yields 403.
func (g *Gate) Require(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.state() == ports.StateLoading {
				return waiting(c)
			}
			switch decide(c, roles) {
			case domain.RedirectSignIn:
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			case domain.RedirectUnauthorized:
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}

// Page gates a browser route: the gate's redirect verdicts become HTTP
// redirects to the sign-in and unauthorized views.
func (g *Gate) Page(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.state() == ports.StateLoading {
				return waiting(c)
			}
			switch decide(c, roles) {
			case domain.RedirectSignIn:
				return c.Redirect(http.StatusFound, signInPath)
			case domain.RedirectUnauthorized:
				return c.Redirect(http.StatusFound, unauthorizedPath)
			}
			return next(c)
		}
	}
}

// Ready blocks only while the session controller has not settled its first
// state. Routes with fixed redirect rules but no role requirement use it so
// they never render a decision during loading either.
func (g *Gate) Ready() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.state() == ports.StateLoading {
				return waiting(c)
			}
			return next(c)
		}
	}
}

func decide(c echo.Context, roles []domain.Role) domain.Decision {
	decision := domain.Authorize(Identity(c), roles)
	metrics.GateDecisionsTotal.WithLabelValues(decision.String()).Inc()
	return decision
}

func waiting(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return echo.NewHTTPError(http.StatusServiceUnavailable, "session state loading")
}
