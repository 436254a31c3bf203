// Package frontauth implements the server-side web front authentication
// core: stateless HTTP middleware that issues, transports, and validates
// authentication envelopes carried as a bearer token or one of two
// cookies, orchestrates a pluggable multi-scheme login pipeline, and
// maintains per-session sliding expiration, critical-level elevation,
// device identity, and impersonation.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// frontauth is the public surface. It exposes [Engine], [Builder],
// [Config], and the value types (FrontAuthenticationInfo, UserInfo,
// MetricsSnapshot, ...). Envelope protection, the login state machine,
// the key ring, and audit dispatch live under internal/ and are never
// exported directly — only through the aliases in types.go.
//
// # What this package must NOT do
//
//   - Route HTTP requests, negotiate content types, or own redirect
//     dispatch beyond what BuildResponse itself writes.
//   - Implement a concrete login backend (basic, OAuth, ...) — those are
//     supplied by the caller as a [LoginService].
//   - Import any sub-package that re-imports frontauth (no import cycles).
//
// # Performance contract
//
// EnsureAuthenticationInfo is the hot path: on a cache hit (the second and
// later call within one request) it must not touch the key ring or
// perform I/O at all.
package frontauth
