// Package middleware exposes HTTP middleware adapters built on top of
// [frontauth.Engine]: a Resolve guard that runs EnsureAuthenticationInfo
// once per request and installs the request-scoped cache slot, and
// RequireLevel guards that reject a request before it reaches the wrapped
// handler when the resolved identity's derived level is too low.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.EnsureAuthenticationInfo and AuthenticationInfo.Level.
//
// # What this package must NOT do
//
//   - Decode or protect envelopes directly (delegates to Engine).
//   - Write cookies itself (Engine.EnsureAuthenticationInfo already does,
//     via SetCookies, on synthesis/sliding renewal).
package middleware
