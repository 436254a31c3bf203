package frontauth

import (
	"net/http"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
)

// cookiePath returns the path the session and long-term cookies are
// scoped to: the configured entry path under WebFrontPath mode, "/"
// otherwise (spec §4.3, §6).
func (e *Engine) cookiePath() string {
	if e.static.CookieMode == CookieModeWebFrontPath {
		return e.static.EntryPath
	}
	return "/"
}

func (e *Engine) sessionSecure(r *http.Request) bool {
	switch e.static.CookieSecurePolicy {
	case CookieSecureAlways:
		return true
	case CookieSecureSameAsRequest:
		return r != nil && r.TLS != nil
	default:
		return false
	}
}

// SetCookies implements the Cookie Manager's write path (C3, spec §4.3):
// it emits or clears the long-term and session cookies independently,
// each governed by its own precondition.
func (e *Engine) SetCookies(w http.ResponseWriter, r *http.Request, f FrontAuthenticationInfo) {
	dyn := e.dynamicOptions()
	now := e.clock()
	path := e.cookiePath()

	longTermWanted := dyn.UseLongTermCookie &&
		((f.RememberMe && f.Info.ActualUser().UserID != 0) || f.Info.DeviceID() != "")
	if longTermWanted {
		raw, err := authinfo.EncodeLongTerm(f.Info.ActualUser(), f.Info.DeviceID(), f.RememberMe)
		if err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     e.static.AuthCookieName + "LT",
				Value:    string(raw),
				Path:     path,
				Expires:  now.Add(dyn.UnsafeExpireTimeSpan),
				HttpOnly: true,
				Secure:   false,
			})
			e.metrics.Inc(MetricCookieWriteLongTerm)
		}
	} else {
		e.clearCookie(w, e.static.AuthCookieName+"LT", path, false)
	}

	sessionWanted := e.static.CookieMode != CookieModeNone && f.Info.Level(now) >= LevelNormal
	if sessionWanted {
		token, err := e.codec.EncodeCookie(f)
		if err == nil {
			cookie := &http.Cookie{
				Name:     e.static.AuthCookieName,
				Value:    token,
				Path:     path,
				HttpOnly: true,
				Secure:   e.sessionSecure(r),
				SameSite: http.SameSiteLaxMode,
			}
			if f.RememberMe {
				if exp := f.Info.Expires(); exp != nil {
					cookie.Expires = *exp
				}
			}
			http.SetCookie(w, cookie)
			e.metrics.Inc(MetricCookieWriteSession)
		}
	} else {
		e.clearCookie(w, e.static.AuthCookieName, path, e.sessionSecure(r))
	}
}

// ClearCookies deletes both the long-term and session cookies. It does not
// touch the request's cached authentication info.
func (e *Engine) ClearCookies(w http.ResponseWriter, r *http.Request) {
	path := e.cookiePath()
	e.clearCookie(w, e.static.AuthCookieName+"LT", path, false)
	e.clearCookie(w, e.static.AuthCookieName, path, e.sessionSecure(r))
}

// Logout clears both cookies (spec §4.3 "Logout"); the request's cached
// authentication info, if any, is left untouched.
func (e *Engine) Logout(w http.ResponseWriter, r *http.Request) {
	e.ClearCookies(w, r)
	e.metrics.Inc(MetricLogout)
}

func (e *Engine) clearCookie(w http.ResponseWriter, name, path string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		HttpOnly: true,
		Secure:   secure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	e.metrics.Inc(MetricCookieClear)
}
