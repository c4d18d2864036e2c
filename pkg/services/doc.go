// Package services provides the typed per-domain clients (leads, calls,
// campaigns, HR, notifications, billing, reporting, customer admin).
//
// They are deliberately thin: every client rides the one shared transport
// client, so credential attachment and 401 recovery happen in exactly one
// place. The registry can layer an expiring read cache over the list/get
// endpoints; any mutation purges it wholesale.
package services
