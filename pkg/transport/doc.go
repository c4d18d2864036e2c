// Package transport provides the single shared HTTP client every Vantage
// service client routes through.
//
// Each outbound request gets the stored access token attached as a bearer
// credential. When an authenticated request comes back 401, the client
// performs exactly one silent refresh, exchanging the stored refresh token
// for a new access token, and retries the original request once. Concurrent
// requests that hit expiry at the same time share a single in-flight refresh.
// If recovery is impossible (no refresh token, or the exchange is rejected),
// all persisted credentials are purged, the session-expiry hook fires, and
// the original 401 propagates to the caller.
//
// Requests under /api/auth/ are exempt from recovery: a 401 there is an
// authentication failure for the user to resolve, not an expired session.
package transport
