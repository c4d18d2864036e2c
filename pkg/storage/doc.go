// Package storage provides the persisted key/value slice behind the session
// and module stores. The Adapter interface keeps store logic testable without
// a real backend; File is the durable single-machine default, Redis serves
// multi-process deployments sharing one session, and Memory backs tests.
package storage
