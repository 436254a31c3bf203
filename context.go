package frontauth

import (
	"context"
	"sync"

	"github.com/nordframe/frontauth/internal/authinfo"
)

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type infoSlotContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The engine copies
// it into the IP field of the audit events it emits for calls made with
// ctx; the resolver's decisions do not depend on it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx. Audit events
// emitted for calls made with ctx carry it under the "user_agent" metadata
// key.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	userAgent, _ := ctx.Value(userAgentContextKey{}).(string)
	return userAgent
}

// infoSlot is the request-scoped, single-writer cache slot spec §5/§9
// require: the first call to EnsureAuthenticationInfo on a request wins
// the write, and every later call on the same request (including a
// framework re-dispatch that reuses the context) observes the same
// reference without re-decoding the envelope.
type infoSlot struct {
	mu  sync.Mutex
	set bool
	val authinfo.FrontAuthenticationInfo
}

// WithInfoSlot installs an empty cache slot on ctx. Callers that build
// their own context chain (rather than going through middleware.Resolve,
// which installs it) must call this once per request before
// EnsureAuthenticationInfo.
func WithInfoSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, infoSlotContextKey{}, &infoSlot{})
}

func infoSlotFromContext(ctx context.Context) *infoSlot {
	if ctx == nil {
		return nil
	}
	slot, _ := ctx.Value(infoSlotContextKey{}).(*infoSlot)
	return slot
}

// loadOrResolve returns the cached value if a prior call on this request
// already won the write; otherwise it calls resolve and stores the result.
// A context with no slot installed (resolve called outside a request, or
// a caller that skipped WithInfoSlot) always resolves fresh.
func (s *infoSlot) loadOrResolve(resolve func() (authinfo.FrontAuthenticationInfo, error)) (authinfo.FrontAuthenticationInfo, error) {
	if s == nil {
		return resolve()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.set {
		return s.val, nil
	}

	info, err := resolve()
	if err != nil {
		return info, err
	}
	s.val = info
	s.set = true
	return info, nil
}
