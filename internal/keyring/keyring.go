// Package keyring implements protector.KeySource. The protector's key ring
// is "externally managed and internally thread-safe" per spec §5; this
// package gives that requirement two concrete shapes: an in-memory single
// key (the default, zero dependencies) and a Redis-backed rotating ring for
// deployments that run more than one instance of the engine and need every
// instance to agree on the current key without a shared session store.
//
// Only keys cross Redis here, never session state — the envelope itself
// stays self-contained, honoring spec.md's "distributed session stores"
// non-goal.
package keyring

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// ErrNoKey is returned when a requested key id is unknown to the ring.
var ErrNoKey = errors.New("keyring: key not found")

// NewRandomKey generates fresh key material suitable for chacha20poly1305:
// 32 raw random bytes, not encoded.
func NewRandomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newKeyID() (string, error) {
	raw := make([]byte, 9)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
