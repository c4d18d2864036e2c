// Package session holds the single source of truth for who is logged in.
//
// The Store commits a session atomically with respect to its own operations:
// tokens and profile are written to the injected storage adapter inside each
// mutating call, so in-memory and persisted state never diverge across an
// operation boundary, and a process restart rehydrates the same session via
// Restore. Cross-store side effects (fetching the tenant's licensed modules
// after login, clearing them on logout) are wired as explicit hooks rather
// than direct calls into other stores.
package session
