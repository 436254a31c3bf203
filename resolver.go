package frontauth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/internal/deviceid"
)

// EnsureAuthenticationInfo implements the Credential Resolver (C2, spec
// §4.2). It is idempotent per request: the first call resolves an envelope
// and caches the result on ctx's info slot (see WithInfoSlot); every later
// call on the same request — including a framework re-dispatch that reuses
// ctx — returns the cached reference without re-decoding (spec §5).
func (e *Engine) EnsureAuthenticationInfo(ctx context.Context, w http.ResponseWriter, r *http.Request) (FrontAuthenticationInfo, error) {
	slot := infoSlotFromContext(ctx)
	return slot.loadOrResolve(func() (FrontAuthenticationInfo, error) {
		return e.resolve(ctx, w, r)
	})
}

func (e *Engine) resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (FrontAuthenticationInfo, error) {
	start := time.Now()
	defer func() { e.metrics.Observe(MetricResolveLatency, time.Since(start)) }()

	dyn := e.dynamicOptions()
	now := e.clock()

	info, source := e.resolveEnvelope(ctx, dyn, r)

	if source == "" {
		if e.shouldSynthesize(r) {
			id, err := deviceid.New()
			if err != nil {
				return FrontAuthenticationInfo{}, err
			}
			info = FrontAuthenticationInfo{Info: authinfo.Create(AnonymousUser, nil, nil, id)}
			source = "synthesize"
			e.metrics.Inc(MetricSynthesized)
			e.SetCookies(w, r, info)
		} else {
			info = FrontAuthenticationInfo{Info: authinfo.None}
			e.metrics.Inc(MetricEmptyResolved)
			return info, nil
		}
	}

	// Sliding expiration never applies to bearer- or long-term-cookie-
	// derived info (spec §4.2).
	if source == "cookie" || source == "synthesize" {
		if renewed, ok := e.applySliding(info, dyn, now); ok {
			info = renewed
			e.metrics.Inc(MetricSlidingRenewed)
			e.SetCookies(w, r, info)
		}
	}

	return info, nil
}

// resolveEnvelope runs the three-tier resolution in priority order: bearer
// header, session cookie, long-term cookie. It returns an empty source
// ("") when none produced an envelope, leaving synthesis/empty handling to
// the caller.
func (e *Engine) resolveEnvelope(ctx context.Context, dyn DynamicOptions, r *http.Request) (FrontAuthenticationInfo, string) {
	if header := r.Header.Get(e.static.BearerHeaderName); header != "" {
		const prefix = "bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			token := header[len(prefix):]
			info, err := e.codec.DecodeToken(token)
			if err == nil {
				e.metrics.Inc(MetricBearerResolved)
				return info, "bearer"
			}
			e.decodeFailed(ctx, "bearer", err)
		}
	}

	if e.static.CookieMode != CookieModeNone {
		if c, err := r.Cookie(e.static.AuthCookieName); err == nil {
			info, err := e.codec.DecodeCookie(c.Value)
			if err == nil {
				e.metrics.Inc(MetricSessionCookieResolved)
				return info, "cookie"
			}
			e.decodeFailed(ctx, "session-cookie", err)
		}
	}

	if dyn.UseLongTermCookie {
		if c, err := r.Cookie(e.static.AuthCookieName + "LT"); err == nil {
			payload, err := authinfo.DecodeLongTerm([]byte(c.Value))
			if err == nil {
				user := payload.User()
				info := FrontAuthenticationInfo{
					Info:       authinfo.Create(user, nil, nil, payload.DeviceID),
					RememberMe: user.UserID != 0,
				}
				e.metrics.Inc(MetricLongTermCookieResolved)
				return info, "longterm"
			}
			e.decodeFailed(ctx, "long-term-cookie", err)
		}
	}

	return FrontAuthenticationInfo{}, ""
}

// decodeFailed logs and audits a swallowed envelope decode failure. Per
// spec §7, this never surfaces to the caller as an authentication error —
// the resolver simply falls through to the next tier.
func (e *Engine) decodeFailed(ctx context.Context, origin string, err error) {
	e.metrics.Inc(MetricEnvelopeDecodeFailure)
	log.Printf("frontauth: %s envelope decode failed, treating as absent: %v", origin, err)
	e.emitAudit(ctx, "resolve.decode_failure", false, 0, "", origin, err)
}

func (e *Engine) shouldSynthesize(r *http.Request) bool {
	switch e.static.CookieMode {
	case CookieModeRootPath:
		return true
	case CookieModeWebFrontPath:
		return strings.HasPrefix(r.URL.Path, e.static.EntryPath)
	default:
		return false
	}
}

// applySliding implements the sliding-expiration rule (spec §4.2): when the
// live expiration is within half the sliding window, it is pushed forward
// by a full window and the caller is told to re-emit the session cookie.
func (e *Engine) applySliding(info FrontAuthenticationInfo, dyn DynamicOptions, now time.Time) (FrontAuthenticationInfo, bool) {
	if e.static.CookieMode != CookieModeRootPath || dyn.SlidingExpirationTime <= 0 {
		return info, false
	}
	if info.Info.Level(now) < LevelNormal {
		return info, false
	}

	halfSliding := dyn.SlidingExpirationTime / 2
	exp := info.Info.Expires()
	if exp == nil || exp.After(now.Add(halfSliding)) {
		return info, false
	}

	info.Info = info.Info.SetExpires(now.Add(dyn.SlidingExpirationTime))
	return info, true
}
