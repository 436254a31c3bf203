// Package protector implements the purpose-scoped authenticated-encryption
// primitive spec §4.1/§6 calls "the data protector". A root key is never
// used directly: every purpose ("Cookie"+"v1", "Token"+"v1", "Extra"+"v1")
// derives its own sub-key via HKDF, so rotating one purpose's exposure
// never affects another, and bumping the version suffix invalidates old
// envelopes cleanly instead of silently misinterpreting them.
package protector

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrDecode is returned whenever a protected string fails to decode or
// authenticate. Callers MUST treat this as "absent envelope", never as an
// authentication failure (spec §4.1).
var ErrDecode = errors.New("protector: decode failed")

// KeySource supplies the raw key material a Protector derives from.
// internal/keyring implementations satisfy this (static or Redis-backed).
type KeySource interface {
	// CurrentKey returns the active signing/encryption key plus an opaque
	// key id used to pick the right key again on decrypt after rotation.
	CurrentKey(purpose string) (keyID string, key []byte, err error)
	// Key resolves a specific previously-issued key id for decrypt.
	Key(purpose string, keyID string) (key []byte, err error)
}

// Protector provides authenticated encryption scoped to one purpose
// string. Protect/Unprotect never expose the underlying cipher.
type Protector struct {
	purpose string
	source  KeySource
}

// New builds a Protector for the given purpose, backed by source.
func New(purpose string, source KeySource) *Protector {
	return &Protector{purpose: purpose, source: source}
}

const keyIDLen = 8 // base64url-encoded opaque prefix carried in the envelope

// Protect authenticated-encrypts plaintext and returns a URL-safe string.
func (p *Protector) Protect(plaintext []byte) (string, error) {
	keyID, rootKey, err := p.source.CurrentKey(p.purpose)
	if err != nil {
		return "", fmt.Errorf("protector: current key: %w", err)
	}

	aead, err := p.aeadFor(rootKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, plaintext, []byte(p.purpose))

	idBytes := []byte(keyID)
	if len(idBytes) > 255 {
		return "", errors.New("protector: key id too long")
	}

	out := make([]byte, 0, 1+len(idBytes)+len(nonce)+len(sealed))
	out = append(out, byte(len(idBytes)))
	out = append(out, idBytes...)
	out = append(out, nonce...)
	out = append(out, sealed...)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// Unprotect reverses Protect. Any corruption, tampering, or key-ring
// failure collapses to ErrDecode.
func (p *Protector) Unprotect(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrDecode
	}
	if len(raw) < 1 {
		return nil, ErrDecode
	}

	idLen := int(raw[0])
	if len(raw) < 1+idLen {
		return nil, ErrDecode
	}
	keyID := string(raw[1 : 1+idLen])
	rest := raw[1+idLen:]

	key, err := p.source.Key(p.purpose, keyID)
	if err != nil {
		return nil, ErrDecode
	}

	aead, err := p.aeadFor(key)
	if err != nil {
		return nil, ErrDecode
	}

	if len(rest) < aead.NonceSize() {
		return nil, ErrDecode
	}
	nonce, ciphertext := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(p.purpose))
	if err != nil {
		return nil, ErrDecode
	}
	return plaintext, nil
}

func (p *Protector) aeadFor(rootKey []byte) (cipherAEAD, error) {
	derived := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(newSHA256, rootKey, nil, []byte(p.purpose))
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, err
	}
	return chacha20poly1305.New(derived)
}

// cipherAEAD is the minimal subset of cipher.AEAD this package needs; kept
// as a named type so aeadFor's signature stays readable at call sites.
type cipherAEAD interface {
	NonceSize() int
	Overhead() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}
