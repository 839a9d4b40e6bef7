// Package health serves the relay's liveness, readiness and version
// endpoints.
//
// Liveness (/health) only proves the process is serving. Readiness
// (/ready) runs every registered check concurrently, each under a
// timeout, and answers 503 while any of them fails. The relay registers a
// configuration check (base URL and application ID present) and, when
// the journal is enabled, a journal store check.
package health
