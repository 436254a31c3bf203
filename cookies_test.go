package frontauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
)

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSetCookiesWritesSessionCookieWhenLevelNormal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	user := authinfo.UserInfo{UserID: 1, UserName: "has-session"}
	exp := now.Add(time.Hour)
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, &exp, nil, "dev")}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.SetCookies(w, r, info)

	cookies := w.Result().Cookies()
	session := findCookie(cookies, engine.static.AuthCookieName)
	if session == nil {
		t.Fatal("expected session cookie to be set")
	}
	if session.Value == "" {
		t.Fatal("expected non-empty session cookie value")
	}
}

func TestSetCookiesClearsSessionWhenLevelBelowNormal(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	// No expiration set: Level stays below Normal, so the session cookie
	// must be cleared rather than written.
	user := authinfo.UserInfo{UserID: 2, UserName: "unsafe"}
	info := FrontAuthenticationInfo{Info: authinfo.Create(user, nil, nil, "dev")}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.SetCookies(w, r, info)

	cookies := w.Result().Cookies()
	session := findCookie(cookies, engine.static.AuthCookieName)
	if session == nil {
		t.Fatal("expected a session cookie clear directive")
	}
	if session.MaxAge >= 0 {
		t.Fatalf("expected session cookie to be cleared (negative MaxAge), got %d", session.MaxAge)
	}
}

func TestSetCookiesWritesLongTermCookieWhenRememberMe(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := testEngine(t, func(b *Builder) { b.now = fixedClock(now) })

	user := authinfo.UserInfo{UserID: 3, UserName: "remembered"}
	exp := now.Add(time.Hour)
	info := FrontAuthenticationInfo{
		Info:       authinfo.Create(user, &exp, nil, "dev"),
		RememberMe: true,
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	engine.SetCookies(w, r, info)

	cookies := w.Result().Cookies()
	lt := findCookie(cookies, engine.static.AuthCookieName+"LT")
	if lt == nil {
		t.Fatal("expected long-term cookie to be set")
	}
}

func TestLogoutClearsBothCookies(t *testing.T) {
	engine := testEngine(t, nil)

	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	w := httptest.NewRecorder()
	engine.Logout(w, r)

	cookies := w.Result().Cookies()
	if findCookie(cookies, engine.static.AuthCookieName) == nil {
		t.Fatal("expected session cookie clear directive")
	}
	if findCookie(cookies, engine.static.AuthCookieName+"LT") == nil {
		t.Fatal("expected long-term cookie clear directive")
	}
}
