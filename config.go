package frontauth

import (
	"errors"
	"time"
)

/*
====================================
COOKIE MODE / SECURE POLICY
====================================
*/

// CookieMode controls whether and where the resolver synthesizes an
// anonymous session and which path the cookies are scoped to (spec §4.2,
// §6).
type CookieMode int

const (
	// CookieModeNone disables cookie-based transport entirely: only the
	// bearer header and long-term cookie (if enabled) are consulted.
	CookieModeNone CookieMode = iota
	// CookieModeRootPath scopes cookies to "/" and synthesizes an
	// anonymous session on every request that reaches no envelope.
	CookieModeRootPath
	// CookieModeWebFrontPath scopes cookies to EntryPath and synthesizes
	// an anonymous session only for requests under that path.
	CookieModeWebFrontPath
)

// CookieSecurePolicy controls the Secure attribute on the session cookie
// (spec §4.3).
type CookieSecurePolicy int

const (
	// CookieSecureNone never sets Secure.
	CookieSecureNone CookieSecurePolicy = iota
	// CookieSecureAlways always sets Secure.
	CookieSecureAlways
	// CookieSecureSameAsRequest sets Secure iff the inbound request was
	// itself served over TLS.
	CookieSecureSameAsRequest
)

/*
====================================
STATIC OPTIONS — captured once at Builder.Build, never re-read (spec §5)
====================================
*/

// StaticOptions are the options captured once at construction time.
// Re-reading them per request would let a hot-reload mid-request change
// the cookie name or scope underneath an in-flight resolve, so the
// engine snapshots them at Build and never consults the live source again.
type StaticOptions struct {
	AuthCookieName     string
	BearerHeaderName   string
	CookieMode         CookieMode
	CookieSecurePolicy CookieSecurePolicy
	EntryPath          string
	AllowedReturnURLs  []string
}

/*
====================================
DYNAMIC OPTIONS — re-read per request from a monitored source (spec §5)
====================================
*/

// DynamicOptions are re-read on every operation so an operator can adjust
// expiration policy without a restart.
type DynamicOptions struct {
	UseLongTermCookie       bool
	ExpireTimeSpan          time.Duration
	UnsafeExpireTimeSpan    time.Duration
	SlidingExpirationTime   time.Duration
	SchemesCriticalTimeSpan map[string]time.Duration
}

// DynamicOptionsSource supplies the current DynamicOptions. A Builder that
// never calls WithDynamicOptionsSource gets a source that always returns
// the snapshot captured at Build time — equivalent to static.
type DynamicOptionsSource func() DynamicOptions

/*
====================================
AUDIT / METRICS / KEY RING CONFIG (ambient stack)
====================================
*/

// AuditConfig controls the async audit dispatcher (internal/audit).
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters/histograms
// (internal/metrics) and, indirectly, which exporters have anything to
// read.
type MetricsConfig struct {
	Enabled bool
}

// KeyRingConfig controls the Redis-backed rotating key ring
// (internal/keyring). Leaving Redis nil makes Builder fall back to a
// single in-memory key per purpose.
type KeyRingConfig struct {
	RedisPrefix string
	CacheTTL    time.Duration
}

/*
====================================
CONFIG
====================================
*/

// Config is the full engine configuration handed to Builder.
type Config struct {
	Static  StaticOptions
	Dynamic DynamicOptions
	Audit   AuditConfig
	Metrics MetricsConfig
	KeyRing KeyRingConfig
}

func defaultConfig() Config {
	return Config{
		Static: StaticOptions{
			AuthCookieName:     "WFA2",
			BearerHeaderName:   "Authorization",
			CookieMode:         CookieModeRootPath,
			CookieSecurePolicy: CookieSecureSameAsRequest,
			EntryPath:          "/c/",
			AllowedReturnURLs:  nil,
		},
		Dynamic: DynamicOptions{
			UseLongTermCookie:       true,
			ExpireTimeSpan:          6 * time.Hour,
			UnsafeExpireTimeSpan:    180 * 24 * time.Hour,
			SlidingExpirationTime:   1 * time.Hour,
			SchemesCriticalTimeSpan: nil,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		KeyRing: KeyRingConfig{
			RedisPrefix: "frontauth:keys:",
			CacheTTL:    30 * time.Second,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Static.AllowedReturnURLs = append([]string(nil), cfg.Static.AllowedReturnURLs...)
	if cfg.Dynamic.SchemesCriticalTimeSpan != nil {
		out.Dynamic.SchemesCriticalTimeSpan = make(map[string]time.Duration, len(cfg.Dynamic.SchemesCriticalTimeSpan))
		for k, v := range cfg.Dynamic.SchemesCriticalTimeSpan {
			out.Dynamic.SchemesCriticalTimeSpan[k] = v
		}
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports a configuration error before the engine is built.
func (c *Config) Validate() error {
	if c.Static.AuthCookieName == "" {
		return errors.New("Static AuthCookieName must not be empty")
	}
	if c.Static.BearerHeaderName == "" {
		return errors.New("Static BearerHeaderName must not be empty")
	}
	switch c.Static.CookieMode {
	case CookieModeNone, CookieModeRootPath, CookieModeWebFrontPath:
		// valid
	default:
		return errors.New("Static CookieMode is invalid")
	}
	if c.Static.CookieMode == CookieModeWebFrontPath && c.Static.EntryPath == "" {
		return errors.New("Static EntryPath is required when CookieMode is WebFrontPath")
	}
	switch c.Static.CookieSecurePolicy {
	case CookieSecureNone, CookieSecureAlways, CookieSecureSameAsRequest:
		// valid
	default:
		return errors.New("Static CookieSecurePolicy is invalid")
	}

	if c.Dynamic.ExpireTimeSpan <= 0 {
		return errors.New("Dynamic ExpireTimeSpan must be > 0")
	}
	if c.Dynamic.UnsafeExpireTimeSpan <= 0 {
		return errors.New("Dynamic UnsafeExpireTimeSpan must be > 0")
	}
	if c.Dynamic.SlidingExpirationTime < 0 {
		return errors.New("Dynamic SlidingExpirationTime must be >= 0")
	}
	for scheme, span := range c.Dynamic.SchemesCriticalTimeSpan {
		if span < 0 {
			return errors.New("Dynamic SchemesCriticalTimeSpan[" + scheme + "] must be >= 0")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.KeyRing.CacheTTL < 0 {
		return errors.New("KeyRing CacheTTL must be >= 0")
	}

	return nil
}
