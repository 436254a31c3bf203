package keyring

import "testing"

func TestStaticKeyProviderCurrentKey(t *testing.T) {
	ring, err := NewSingleKeyProvider("Cookiev1", "Tokenv1")
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}

	keyID, key, err := ring.CurrentKey("Cookiev1")
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if keyID != "v1" {
		t.Fatalf("expected keyID v1, got %q", keyID)
	}
	if len(key) != 32 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	resolved, err := ring.Key("Cookiev1", "v1")
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if string(resolved) != string(key) {
		t.Fatalf("resolved key mismatch")
	}
}

func TestStaticKeyProviderUnknownPurpose(t *testing.T) {
	ring, err := NewSingleKeyProvider("Cookiev1")
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}
	if _, _, err := ring.CurrentKey("missing"); err != ErrNoKey {
		t.Fatalf("expected ErrNoKey, got %v", err)
	}
	if _, err := ring.Key("Cookiev1", "v2"); err != ErrNoKey {
		t.Fatalf("expected ErrNoKey for unknown key id, got %v", err)
	}
}

func TestNewStaticKeyProviderDistinctPurposesIsolated(t *testing.T) {
	ring, err := NewSingleKeyProvider("Cookiev1", "Tokenv1")
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}
	_, cookieKey, _ := ring.CurrentKey("Cookiev1")
	_, tokenKey, _ := ring.CurrentKey("Tokenv1")
	if string(cookieKey) == string(tokenKey) {
		t.Fatalf("expected distinct random keys per purpose")
	}
}
