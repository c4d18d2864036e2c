// Package cli implements the vantage admin CLI commands.
//
// Commands build the full client stack (config, storage adapter, transport,
// session and module stores, guards) on every invocation and restore any
// persisted session before running. Guarded commands evaluate their access
// requirement exactly like the web client's route guards: licensing first
// for module-gated commands, then permissions and roles.
package cli
