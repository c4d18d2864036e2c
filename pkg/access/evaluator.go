package access

import "github.com/vantagecrm/vantage-go/pkg/session"

// Evaluator answers permission and role questions about the current session.
// Every predicate re-reads the session store and scans the lists fresh; the
// lists are small and memoizing them trades a negligible cost for staleness
// bugs. With no user logged in, every predicate is false.
type Evaluator struct {
	sessions *session.Store
}

// NewEvaluator creates an evaluator over the session store.
func NewEvaluator(sessions *session.Store) *Evaluator {
	return &Evaluator{sessions: sessions}
}

func (e *Evaluator) user() *session.User {
	return e.sessions.Current().User
}

// HasPermission reports whether the current user holds the permission.
// Matching is exact and case-sensitive.
func (e *Evaluator) HasPermission(permission string) bool {
	u := e.user()
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the current user holds at least one of
// the permissions. An empty list is false.
func (e *Evaluator) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if e.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the current user holds every one of the
// permissions. An empty list is vacuously true for a logged-in user.
func (e *Evaluator) HasAllPermissions(permissions ...string) bool {
	if e.user() == nil {
		return false
	}
	for _, p := range permissions {
		if !e.HasPermission(p) {
			return false
		}
	}
	return true
}

// HasRole reports whether the current user holds the role.
func (e *Evaluator) HasRole(role string) bool {
	u := e.user()
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the current user holds at least one of the
// roles. An empty list is false.
func (e *Evaluator) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if e.HasRole(r) {
			return true
		}
	}
	return false
}
