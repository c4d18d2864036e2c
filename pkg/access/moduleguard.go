package access

import (
	"github.com/vantagecrm/vantage-go/pkg/modules"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/session"
)

// DeniedModule means the tenant has not licensed the module. Declared here
// rather than with the other states: only the module guard produces it.
const DeniedModule State = 100

// ModuleGuard gates features on tenant licensing before user permissions.
// Licensing is checked first so that an unlicensed feature reports "not
// licensed" without revealing which permissions it would have required.
type ModuleGuard struct {
	guard   *Guard
	modules *modules.Store
}

// NewModuleGuard creates a module guard over the session and module stores.
func NewModuleGuard(sessions *session.Store, moduleStore *modules.Store, logger *observability.Logger) *ModuleGuard {
	return &ModuleGuard{
		guard:   NewGuard(sessions, logger),
		modules: moduleStore,
	}
}

// Evaluate checks authentication, then licensing of the module code, then
// the optional permission requirement. A licensing failure returns
// DeniedModule with the code in Missing; a permission failure redirects to
// the access-denied route rather than rendering inline.
func (g *ModuleGuard) Evaluate(code string, req Requirement) Decision {
	sess := g.guard.sessions.Current()
	if !sess.Authenticated {
		return Decision{State: RedirectLogin, Redirect: LoginRoute}
	}
	if sess.User == nil {
		return Decision{State: Loading}
	}

	if !g.modules.HasModule(code) {
		return Decision{State: DeniedModule, Missing: []string{code}}
	}

	req.RedirectOnDeny = true
	decision := g.guard.Evaluate(req)
	if decision.State == DeniedPermission || decision.State == DeniedRole {
		decision.Redirect = AccessDeniedRoute
	}
	return decision
}
