// Package modules tracks which feature modules the tenant has licensed.
//
// The gateway is the source of truth; the Store only caches its answer. The
// cached list is replaced wholesale on every fetch and cleared on any fetch
// failure, so the store fails closed: when it cannot know what is licensed,
// nothing is.
package modules
