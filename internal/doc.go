// Package internal groups the sub-packages that are intentionally private to
// frontauth; the package itself holds no code.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - authinfo — immutable authentication info / user info value types
//   - deviceid — device identity minting and validation
//   - envelope — bearer-token and cookie codec built on protector
//   - extra — protected opaque data bag for redirect-based carry
//   - flows — pure-function login orchestration (UnifiedLogin)
//   - keyring — static and Redis-backed key sources for protector
//   - metrics — lock-free counters and latency histograms
//   - protector — purpose-scoped AEAD sealing and opening
//
// # What this package must NOT do
//
//   - Export types that appear in the public frontauth API.
//   - Be imported by any package outside the frontauth module.
package internal
