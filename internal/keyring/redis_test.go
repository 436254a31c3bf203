package keyring

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRing(t *testing.T) (*RedisKeyProvider, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ring := NewRedisKeyProvider(client, "frontauth-test:", 50*time.Millisecond)

	return ring, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestRedisKeyProviderPublishAndResolve(t *testing.T) {
	ring, cleanup := newTestRing(t)
	defer cleanup()

	keyID, err := ring.Publish(t.Context(), "Cookiev1")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	gotID, key, err := ring.CurrentKey("Cookiev1")
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if gotID != keyID {
		t.Fatalf("keyID mismatch: got %s want %s", gotID, keyID)
	}
	if len(key) != 32 {
		t.Fatalf("unexpected key length %d", len(key))
	}

	resolved, err := ring.Key("Cookiev1", keyID)
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if string(resolved) != string(key) {
		t.Fatalf("resolved key mismatch")
	}
}

func TestRedisKeyProviderUnknownPurpose(t *testing.T) {
	ring, cleanup := newTestRing(t)
	defer cleanup()

	if _, _, err := ring.CurrentKey("unknown"); err != ErrNoKey {
		t.Fatalf("expected ErrNoKey, got %v", err)
	}
}

func TestRedisKeyProviderRotationKeepsOldKeyAddressable(t *testing.T) {
	ring, cleanup := newTestRing(t)
	defer cleanup()

	oldID, err := ring.Publish(t.Context(), "Tokenv1")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	newID, err := ring.Publish(t.Context(), "Tokenv1")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if oldID == newID {
		t.Fatalf("expected distinct key ids across rotations")
	}

	if _, err := ring.Key("Tokenv1", oldID); err != nil {
		t.Fatalf("expected old key id to remain resolvable, got %v", err)
	}

	curID, _, err := ring.CurrentKey("Tokenv1")
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if curID != newID {
		t.Fatalf("expected current key to be the latest rotation")
	}
}
