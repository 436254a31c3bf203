package protector

import (
	"strings"
	"testing"

	"github.com/nordframe/frontauth/internal/keyring"
)

func mustRing(t *testing.T, purposes ...string) *keyring.StaticKeyProvider {
	t.Helper()
	ring, err := keyring.NewSingleKeyProvider(purposes...)
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}
	return ring
}

func TestProtectUnprotectRoundTrip(t *testing.T) {
	ring := mustRing(t, "Cookiev1")
	p := New("Cookiev1", ring)

	token, err := p.Protect([]byte("hello world"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if strings.Contains(token, "=") {
		t.Fatalf("token should be unpadded base64url, got %q", token)
	}

	got, err := p.Unprotect(token)
	if err != nil {
		t.Fatalf("Unprotect: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestUnprotectRejectsTamperedToken(t *testing.T) {
	ring := mustRing(t, "Tokenv1")
	p := New("Tokenv1", ring)

	token, err := p.Protect([]byte("payload"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	tampered := []byte(token)
	tampered[len(tampered)-1] ^= 0x01
	if _, err := p.Unprotect(string(tampered)); err != ErrDecode {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestUnprotectRejectsGarbage(t *testing.T) {
	ring := mustRing(t, "Extrav1")
	p := New("Extrav1", ring)

	if _, err := p.Unprotect("not-a-valid-token!!"); err != ErrDecode {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestPurposesAreNotInterchangeable(t *testing.T) {
	ring := mustRing(t, "Cookiev1", "Tokenv1")
	cookie := New("Cookiev1", ring)
	token := New("Tokenv1", ring)

	sealed, err := cookie.Protect([]byte("secret"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if _, err := token.Unprotect(sealed); err != ErrDecode {
		t.Fatalf("expected cross-purpose decode to fail, got %v", err)
	}
}

func TestUnknownKeyIDFails(t *testing.T) {
	ring := mustRing(t, "Cookiev1")
	p := New("Cookiev1", ring)

	sealed, err := p.Protect([]byte("data"))
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}

	empty, err := keyring.NewSingleKeyProvider()
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}
	other := New("Cookiev1", empty)
	if _, err := other.Unprotect(sealed); err != ErrDecode {
		t.Fatalf("expected ErrDecode for unknown key id, got %v", err)
	}
}
