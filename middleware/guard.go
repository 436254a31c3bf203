package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/nordframe/frontauth"
)

type infoContextKey struct{}

// FromContext returns the FrontAuthenticationInfo a Resolve middleware
// stored on ctx, and whether one was found. Handlers downstream of Resolve
// should use this instead of calling EnsureAuthenticationInfo again — it
// is already cached, but FromContext avoids the context.Context threading
// entirely for handlers that only read the identity.
func FromContext(ctx context.Context) (frontauth.FrontAuthenticationInfo, bool) {
	info, ok := ctx.Value(infoContextKey{}).(frontauth.FrontAuthenticationInfo)
	return info, ok
}

// Resolve installs the request-scoped info slot, runs
// Engine.EnsureAuthenticationInfo once, and stores the result on the
// request context for FromContext and any later Resolve-wrapped handler
// in the same chain. It never rejects the request itself — an anonymous
// or expired identity still reaches the wrapped handler; use RequireLevel
// to enforce a minimum.
func Resolve(engine *frontauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := frontauth.WithInfoSlot(r.Context())

			info, err := engine.EnsureAuthenticationInfo(ctx, w, r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, infoContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireLevel rejects the request with 401 unless the identity Resolve
// stored on the context has derived Level >= min at the time of the call.
// It must be mounted inside Resolve (it reads FromContext, it does not
// resolve).
func RequireLevel(min frontauth.Level, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			clock := time.Now
			if now != nil {
				clock = now
			}

			if info.Info.Level(clock()) < min {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
