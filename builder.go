package frontauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	internalaudit "github.com/nordframe/frontauth/internal/audit"
	"github.com/nordframe/frontauth/internal/envelope"
	"github.com/nordframe/frontauth/internal/keyring"
	"github.com/nordframe/frontauth/internal/protector"
	"github.com/redis/go-redis/v9"
)

// Builder configures and constructs an Engine. A Builder is single-use:
// Build returns an error on a second call, matching the teacher's
// discard-after-build convention.
type Builder struct {
	config        Config
	dynamicSource DynamicOptionsSource

	keySource protector.KeySource
	redis     redis.UniversalClient

	backends   map[string]LoginService
	validator  ValidatorFunc
	autoBind   SideServiceFunc
	autoCreate SideServiceFunc

	auditSink AuditSink

	now func() time.Time

	built bool
}

// New starts a Builder seeded with the default Config.
func New() *Builder {
	return &Builder{
		config:   defaultConfig(),
		backends: make(map[string]LoginService),
	}
}

// WithConfig replaces the Builder's Config wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithDynamicOptionsSource supplies the per-request DynamicOptions source
// (spec §5 "Options hot-reload"). Without one, Build captures cfg.Dynamic
// once and every request sees that same snapshot.
func (b *Builder) WithDynamicOptionsSource(src DynamicOptionsSource) *Builder {
	b.dynamicSource = src
	return b
}

// WithRedis backs the protector's key ring with a Redis-resident rotating
// key set (internal/keyring.RedisKeyProvider) instead of the in-memory
// default, so every instance in a fleet converges on the same current key.
// Build publishes a first key for any envelope purpose that has none yet.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithKeySource overrides the protector's key source entirely, bypassing
// both the Redis and in-memory defaults. Mutually exclusive with WithRedis
// (whichever is set wins: an explicit key source takes priority).
func (b *Builder) WithKeySource(source protector.KeySource) *Builder {
	b.keySource = source
	return b
}

// WithLoginService registers the login backend for scheme (spec §6's
// login-service contract). At least one is required to Build.
func (b *Builder) WithLoginService(scheme string, svc LoginService) *Builder {
	b.backends[scheme] = svc
	return b
}

// WithValidator installs the optional post-login validation stage (spec
// §4.4, §9). Leaving it unset means "no validator configured" — the
// orchestrator skips the dry-run/commit split and commits on the first
// backend success.
func (b *Builder) WithValidator(v ValidatorFunc) *Builder {
	b.validator = v
	return b
}

// WithAutoBind installs the optional account-binding side service invoked
// when an unregistered backend identity is reported while a user is
// already logged in (spec §4.4).
func (b *Builder) WithAutoBind(s SideServiceFunc) *Builder {
	b.autoBind = s
	return b
}

// WithAutoCreate installs the optional auto-registration side service
// invoked when an unregistered backend identity is reported with no user
// currently logged in (spec §4.4).
func (b *Builder) WithAutoCreate(s SideServiceFunc) *Builder {
	b.autoCreate = s
	return b
}

// WithAuditSink installs the sink the async audit dispatcher forwards
// events to. Leaving it unset is equivalent to a NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter/histogram collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithClock overrides the Engine's notion of "now". Intended for tests;
// production callers should leave this unset (defaults to time.Now).
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the accumulated configuration and constructs an Engine.
// The Builder must not be reused afterward.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("frontauth: builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(b.backends) == 0 {
		return nil, fmt.Errorf("%w: at least one login service must be registered", ErrInvalidConfig)
	}

	source := b.keySource
	if source == nil && b.redis != nil {
		ring := keyring.NewRedisKeyProvider(b.redis, cfg.KeyRing.RedisPrefix, cfg.KeyRing.CacheTTL)
		for _, purpose := range envelope.Purposes() {
			if _, _, err := ring.CurrentKey(purpose); errors.Is(err, keyring.ErrNoKey) {
				if _, err := ring.Publish(context.Background(), purpose); err != nil {
					return nil, err
				}
			}
		}
		source = ring
	}
	if source == nil {
		ring, err := keyring.NewSingleKeyProvider(envelope.Purposes()...)
		if err != nil {
			return nil, err
		}
		source = ring
	}

	dynamicSource := b.dynamicSource
	if dynamicSource == nil {
		snapshot := cfg.Dynamic
		dynamicSource = func() DynamicOptions { return snapshot }
	}

	engine := &Engine{
		static:     cfg.Static,
		dynamic:    dynamicSource,
		codec:      envelope.New(source),
		backends:   b.backends,
		validator:  b.validator,
		autoBind:   b.autoBind,
		autoCreate: b.autoCreate,
		metrics:    NewMetrics(cfg.Metrics),
		audit:      internalaudit.NewDispatcher(internalaudit.Config(cfg.Audit), b.auditSink),
		now:        b.now,
	}

	b.built = true
	return engine, nil
}
