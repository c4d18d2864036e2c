// Package api defines the wire types exchanged with the Vantage API gateway.
//
// Every gateway response arrives wrapped in an Envelope carrying a success
// flag, an optional structured Error, and a raw data payload. This package
// holds the envelope, the authentication and module-licensing payloads, and
// the domain record shapes consumed by the service clients. It carries no
// behavior beyond envelope decoding; business logic lives server-side.
package api
