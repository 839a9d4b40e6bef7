// Package auth selects the credentials attached to each forwarded call.
//
// Every call is first classified by Classify into one of three operation
// classes. The Resolver then picks a credential source for that class:
// the caller's own session token (cookie or header), a session obtained
// by logging in with the configured service account, or the master key.
//
// Sessions obtained by login are kept in a process-wide SessionCache for
// the configured TTL. The cache is lock-free; concurrent refreshes may
// cause a few duplicate logins and the last writer wins.
//
// Failing to obtain a credential is never an error at this layer. The
// call proceeds with whatever headers could be resolved and the backend
// rejects it as it sees fit.
package auth
