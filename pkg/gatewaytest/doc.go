// Package gatewaytest is an in-process fake of the Vantage API gateway.
//
// It implements the auth surface (login, register, registration-status,
// token refresh) and enough of the domain endpoints to exercise the SDK end
// to end, wrapped in the production response envelope. Access tokens really
// expire, and tests can force expiry or revoke refresh tokens to drive the
// client's recovery paths. It backs both the integration tests and the
// gateway-sim development binary.
package gatewaytest
