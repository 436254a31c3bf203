// Package deviceid mints the device identifiers the resolver and login
// orchestrator stamp onto anonymous and authenticated sessions alike.
package deviceid

import (
	"encoding/base64"

	"github.com/google/uuid"
)

// New returns a fresh device id: the 16 raw bytes of a random (v4) UUID,
// base64url-encoded without padding. The UUID generator is reused purely as
// a convenient, already-imported source of 16 well-distributed random bytes
// — the value carries no UUID semantics once encoded and is never parsed
// back into one.
func New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	raw := id[:]
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Valid reports whether s decodes as a 16-byte base64url device id. It does
// not distinguish device ids minted here from ones a caller supplied out of
// band; it only guards against malformed cookie/header input.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return len(raw) == 16
}
