package domain

// Decision is the verdict of the route authorization gate.
type Decision int

const (
	Admit Decision = iota
	RedirectSignIn
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Admit:
		return "admit"
	case RedirectSignIn:
		return "redirect_signin"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Authorize decides whether identity may enter a route guarded by required.
// A nil identity always yields RedirectSignIn, whatever the required set.
// An empty required set admits any authenticated identity.
//
// The function is pure and total: no I/O, safe to re-evaluate on every
// request with the latest identity snapshot. Views must never re-implement
// the role check themselves.
func Authorize(identity *Identity, required []Role) Decision {
	if identity == nil {
		return RedirectSignIn
	}
	if len(required) == 0 {
		return Admit
	}
	for _, r := range required {
		if identity.Role == r {
			return Admit
		}
	}
	return RedirectUnauthorized
}

// HomePath returns the landing route for a role. Used by the fixed redirect
// rule that sends an already-authenticated identity away from /login.
func HomePath(role Role) string {
	if role == RoleAdmin {
		return "/admin"
	}
	return "/coordinator"
}
