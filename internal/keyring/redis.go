package keyring

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyProvider caches rotating per-purpose keys read from Redis so that
// every engine instance in a fleet converges on the same current key
// without a shared session store. Reads are cached for cacheTTL to keep
// the protector off the network on the common path; a cache miss costs one
// round trip, matching the "one Redis round-trip per call" budget the
// teacher's engine holds itself to for non-hot-path operations.
type RedisKeyProvider struct {
	client   redis.UniversalClient
	prefix   string
	cacheTTL time.Duration

	mu    sync.RWMutex
	cache map[string]cachedEntry // purpose -> entry
	byID  map[string]map[string][]byte
}

type cachedEntry struct {
	keyID    string
	key      []byte
	cachedAt time.Time
}

// NewRedisKeyProvider builds a ring backed by client, namespaced under
// prefix (e.g. "frontauth:keys:"). cacheTTL controls how long a purpose's
// current key is trusted before being refetched from Redis.
func NewRedisKeyProvider(client redis.UniversalClient, prefix string, cacheTTL time.Duration) *RedisKeyProvider {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &RedisKeyProvider{
		client:   client,
		prefix:   prefix,
		cacheTTL: cacheTTL,
		cache:    make(map[string]cachedEntry),
		byID:     make(map[string]map[string][]byte),
	}
}

// Publish generates and stores a fresh key for purpose as its new current
// key, keeping the previous key id addressable for in-flight envelopes
// still in callers' hands until they expire naturally.
func (r *RedisKeyProvider) Publish(ctx context.Context, purpose string) (string, error) {
	key, err := NewRandomKey()
	if err != nil {
		return "", err
	}
	keyID, err := newKeyID()
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(key)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.keysHashKey(purpose), keyID, encoded)
	pipe.Set(ctx, r.currentKeyKey(purpose), keyID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.cache[purpose] = cachedEntry{keyID: keyID, key: key, cachedAt: time.Now()}
	if r.byID[purpose] == nil {
		r.byID[purpose] = make(map[string][]byte)
	}
	r.byID[purpose][keyID] = key
	r.mu.Unlock()

	return keyID, nil
}

func (r *RedisKeyProvider) CurrentKey(purpose string) (string, []byte, error) {
	r.mu.RLock()
	entry, ok := r.cache[purpose]
	fresh := ok && time.Since(entry.cachedAt) < r.cacheTTL
	r.mu.RUnlock()
	if fresh {
		return entry.keyID, entry.key, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	keyID, err := r.client.Get(ctx, r.currentKeyKey(purpose)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil, ErrNoKey
	}
	if err != nil {
		return "", nil, err
	}

	key, err := r.fetchKey(ctx, purpose, keyID)
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	r.cache[purpose] = cachedEntry{keyID: keyID, key: key, cachedAt: time.Now()}
	r.mu.Unlock()

	return keyID, key, nil
}

func (r *RedisKeyProvider) Key(purpose, keyID string) ([]byte, error) {
	r.mu.RLock()
	key, ok := r.byID[purpose][keyID]
	r.mu.RUnlock()
	if ok {
		return key, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key, err := r.fetchKey(ctx, purpose, keyID)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (r *RedisKeyProvider) fetchKey(ctx context.Context, purpose, keyID string) ([]byte, error) {
	encoded, err := r.client.HGet(ctx, r.keysHashKey(purpose), keyID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoKey
	}
	if err != nil {
		return nil, err
	}
	key, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrNoKey
	}

	r.mu.Lock()
	if r.byID[purpose] == nil {
		r.byID[purpose] = make(map[string][]byte)
	}
	r.byID[purpose][keyID] = key
	r.mu.Unlock()

	return key, nil
}

func (r *RedisKeyProvider) keysHashKey(purpose string) string {
	return r.prefix + "keys:" + purpose
}

func (r *RedisKeyProvider) currentKeyKey(purpose string) string {
	return r.prefix + "current:" + purpose
}
