package frontauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
)

func TestResolverPrefersBearerOverCookie(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	bearerUser := authinfo.UserInfo{UserID: 1, UserName: "bearer-user"}
	cookieUser := authinfo.UserInfo{UserID: 2, UserName: "cookie-user"}

	exp := now.Add(time.Hour)
	bearerInfo := FrontAuthenticationInfo{Info: authinfo.Create(bearerUser, &exp, nil, "dev-bearer")}
	cookieInfo := FrontAuthenticationInfo{Info: authinfo.Create(cookieUser, &exp, nil, "dev-cookie")}

	token, err := engine.codec.EncodeToken(bearerInfo)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	cookieVal, err := engine.codec.EncodeCookie(cookieInfo)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.AddCookie(&http.Cookie{Name: engine.static.AuthCookieName, Value: cookieVal})

	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	got, err := engine.EnsureAuthenticationInfo(ctx, w, r)
	if err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}
	if got.Info.User().UserID != 1 {
		t.Fatalf("expected bearer identity to win, got user %d", got.Info.User().UserID)
	}
}

func TestResolverFallsBackToCookieWhenNoBearer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	user := authinfo.UserInfo{UserID: 3, UserName: "cookie-only"}
	exp := now.Add(time.Hour)
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, &exp, nil, "dev")}

	cookieVal, err := engine.codec.EncodeCookie(info)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: engine.static.AuthCookieName, Value: cookieVal})
	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	got, err := engine.EnsureAuthenticationInfo(ctx, w, r)
	if err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}
	if got.Info.User().UserID != 3 {
		t.Fatalf("expected cookie identity, got user %d", got.Info.User().UserID)
	}
}

func TestResolverTamperedCookieTreatedAsAbsent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	user := authinfo.UserInfo{UserID: 9, UserName: "tampered"}
	exp := now.Add(time.Hour)
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, &exp, nil, "dev")}

	cookieVal, err := engine.codec.EncodeCookie(info)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: engine.static.AuthCookieName, Value: cookieVal + "tampered"})
	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	got, err := engine.EnsureAuthenticationInfo(ctx, w, r)
	if err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}
	// A tampered envelope must never surface the tampered identity — the
	// resolver falls through to synthesis (default CookieModeRootPath).
	if got.Info.User().UserID == 9 {
		t.Fatal("tampered cookie was trusted")
	}
}

func TestResolverSlidingExpirationRenewsNearHalfLife(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) {
		b.now = fixedClock(now)
		b.config.Dynamic.SlidingExpirationTime = time.Hour
	})

	user := authinfo.UserInfo{UserID: 4, UserName: "sliding"}
	// Expires in 20 minutes: inside the 30-minute half-window, so the
	// resolver must push expiration forward by a full window.
	exp := now.Add(20 * time.Minute)
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, &exp, nil, "dev")}

	cookieVal, err := engine.codec.EncodeCookie(info)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: engine.static.AuthCookieName, Value: cookieVal})
	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	got, err := engine.EnsureAuthenticationInfo(ctx, w, r)
	if err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}

	wantExpires := now.Add(time.Hour)
	gotExpires := got.Info.Expires()
	if gotExpires == nil || !gotExpires.Equal(wantExpires) {
		t.Fatalf("expected renewed expiry %v, got %v", wantExpires, gotExpires)
	}
}

func TestResolverObservesLatencyHistogram(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now); b.WithMetricsEnabled(true) })

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	if _, err := engine.EnsureAuthenticationInfo(ctx, w, r); err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}

	buckets := engine.MetricsSnapshot().Histograms[MetricResolveLatency]
	var total uint64
	for _, c := range buckets {
		total += c
	}
	if total == 0 {
		t.Fatal("expected resolve() to feed the ResolveLatency histogram, got all-zero buckets")
	}
}

func TestResolverSlidingExpirationIdempotentWithinFreshWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) {
		b.now = fixedClock(now)
		b.config.Dynamic.SlidingExpirationTime = time.Hour
	})

	user := authinfo.UserInfo{UserID: 5, UserName: "fresh"}
	// Expires in 59 minutes: outside the 30-minute half-window, so no
	// renewal should occur.
	exp := now.Add(59 * time.Minute)
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, &exp, nil, "dev")}

	cookieVal, err := engine.codec.EncodeCookie(info)
	if err != nil {
		t.Fatalf("EncodeCookie: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: engine.static.AuthCookieName, Value: cookieVal})
	w := httptest.NewRecorder()
	ctx := WithInfoSlot(context.Background())

	got, err := engine.EnsureAuthenticationInfo(ctx, w, r)
	if err != nil {
		t.Fatalf("EnsureAuthenticationInfo: %v", err)
	}

	gotExpires := got.Info.Expires()
	if gotExpires == nil || !gotExpires.Equal(exp) {
		t.Fatalf("expected unchanged expiry %v, got %v", exp, gotExpires)
	}
}
