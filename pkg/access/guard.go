package access

import (
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/session"
)

// State is the outcome of a guard evaluation.
type State int

const (
	// RedirectLogin means no authenticated session exists.
	RedirectLogin State = iota
	// Loading means the session is authenticated but the profile has not
	// arrived yet; the caller should hold rendering and re-evaluate.
	Loading
	// DeniedPermission means a configured permission requirement failed.
	DeniedPermission
	// DeniedRole means a configured role requirement failed.
	DeniedRole
	// Granted means the caller may proceed.
	Granted
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case RedirectLogin:
		return "redirect-login"
	case Loading:
		return "loading"
	case DeniedPermission:
		return "denied-permission"
	case DeniedRole:
		return "denied-role"
	case Granted:
		return "granted"
	case DeniedModule:
		return "denied-module"
	default:
		return "unknown"
	}
}

// Requirement describes what a page needs. Permissions combine with OR
// unless RequireAll is set; roles always combine with OR. Empty slices mean
// no requirement of that kind.
type Requirement struct {
	Permissions []string
	RequireAll  bool
	Roles       []string

	// RedirectOnDeny sends denied users to the dashboard instead of an
	// inline denial view.
	RedirectOnDeny bool
}

// Decision is a guard's answer, including what to show or where to go.
type Decision struct {
	State State

	// Redirect is the route to navigate to, set for RedirectLogin and for
	// denials with RedirectOnDeny.
	Redirect string

	// Missing names the requirement that failed, for the denial view.
	Missing []string
}

// Routes the guard redirects to.
const (
	LoginRoute        = "/login"
	DashboardRoute    = "/dashboard"
	AccessDeniedRoute = "/access-denied"
)

// Guard evaluates a Requirement against the live session.
type Guard struct {
	sessions  *session.Store
	evaluator *Evaluator
	logger    *observability.Logger
}

// NewGuard creates a route guard over the session store.
func NewGuard(sessions *session.Store, logger *observability.Logger) *Guard {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Guard{
		sessions:  sessions,
		evaluator: NewEvaluator(sessions),
		logger:    logger,
	}
}

// Evaluator returns the guard's underlying predicate evaluator.
func (g *Guard) Evaluator() *Evaluator {
	return g.evaluator
}

// Evaluate runs the access checks in order, first failure wins:
// authentication, profile presence, permission requirement, role
// requirement. A Loading decision is terminal only for this evaluation; the
// caller re-evaluates once the profile arrives.
func (g *Guard) Evaluate(req Requirement) Decision {
	sess := g.sessions.Current()

	if !sess.Authenticated {
		return Decision{State: RedirectLogin, Redirect: LoginRoute}
	}
	if sess.User == nil {
		return Decision{State: Loading}
	}

	if len(req.Permissions) > 0 {
		ok := g.evaluator.HasAnyPermission(req.Permissions...)
		if req.RequireAll {
			ok = g.evaluator.HasAllPermissions(req.Permissions...)
		}
		if !ok {
			return g.deny(DeniedPermission, req, req.Permissions)
		}
	}

	if len(req.Roles) > 0 && !g.evaluator.HasAnyRole(req.Roles...) {
		return g.deny(DeniedRole, req, req.Roles)
	}

	return Decision{State: Granted}
}

func (g *Guard) deny(state State, req Requirement, missing []string) Decision {
	d := Decision{State: state, Missing: missing}
	if req.RedirectOnDeny {
		d.Redirect = DashboardRoute
	}
	g.logger.WithFields(map[string]interface{}{
		"state":   state.String(),
		"missing": missing,
	}).Debug("access denied")
	return d
}
