// Package access decides whether the current user may see a page or
// feature.
//
// Three layers build on each other. Evaluator holds the pure predicates
// over the session's role and permission lists. Guard turns a Requirement
// into a routing Decision (redirect to login, show a loading state, deny,
// or grant), evaluated in a fixed order with the first failure winning.
// ModuleGuard adds tenant licensing in front of the permission check, and
// Checker is the in-page variant that debounces evaluation briefly so a
// settling session does not flash a denial.
package access
