package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

const (
	// IdentityKey is the echo context key holding the resolved
	// *domain.Identity; nil means the request is effectively anonymous.
	IdentityKey = "identity"

	sessionCookie = "ssea_session"
)

// IdentityFunc yields the identity snapshot for a verified subject id, or
// nil when none resolves. The session controller's Current satisfies this.
type IdentityFunc func(c echo.Context, subjectID string) *domain.Identity

// Session extracts the session token (Authorization bearer header, falling
// back to the session cookie), verifies it against the session store, and
// resolves the subject to an identity. The request proceeds in every case:
// a missing, expired, or unresolvable session simply leaves the identity
// absent, and the gate decides what that means for the route.
func Session(store ports.SessionStore, current IdentityFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				c.Set(IdentityKey, (*domain.Identity)(nil))
				return next(c)
			}

			subjectID, err := store.Verify(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionExpired) {
					// Store failure: treated as signed out, never fatal.
					c.Logger().Error(err)
				}
				c.Set(IdentityKey, (*domain.Identity)(nil))
				return next(c)
			}

			c.Set(IdentityKey, current(c, subjectID))
			return next(c)
		}
	}
}

// Identity returns the identity placed in the context by Session, or nil.
func Identity(c echo.Context) *domain.Identity {
	identity, _ := c.Get(IdentityKey).(*domain.Identity)
	return identity
}

// Token returns the raw session token on the request, if any.
func Token(c echo.Context) string {
	return extractToken(c)
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// SessionCookie builds the cookie the page routes use to carry the session
// token. A negative maxAge clears it.
func SessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
