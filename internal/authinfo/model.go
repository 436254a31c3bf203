// Package authinfo implements the immutable authentication-info value types
// (spec §3, §6): UserInfo, AuthenticationInfo, FrontAuthenticationInfo, and
// the level derivation and transition operations (Create, SetExpires,
// Impersonate, CheckExpiration, ...).
//
// Every operation returns a new value; nothing here mutates a receiver in
// place. That removes any need for copy-on-write locking and makes the
// model trivially safe to share across goroutines.
package authinfo

import "time"

// Level is the derived authentication strength of an AuthenticationInfo.
type Level uint8

const (
	// LevelNone is the distinguished empty/anonymous-with-no-envelope state.
	LevelNone Level = iota
	// LevelUnsafe is non-anonymous but with no live expiration (bearer-less,
	// long-term-cookie-only, or simply expired).
	LevelUnsafe
	// LevelNormal has a live (future) expiration.
	LevelNormal
	// LevelCritical has a live criticalExpires on top of LevelNormal.
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "None"
	case LevelUnsafe:
		return "Unsafe"
	case LevelNormal:
		return "Normal"
	case LevelCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Scheme records that a login scheme was used, and when it was last used.
type Scheme struct {
	Name       string
	LastUsedAt time.Time
}

// UserInfo is an immutable identity: either anonymous (UserID == 0, empty
// UserName, no schemes) or a concrete user.
//
// Invariant: UserID == 0 iff anonymous iff Schemes is empty.
type UserInfo struct {
	UserID   uint64
	UserName string
	Schemes  []Scheme
}

// AnonymousUser is the distinguished zero-value anonymous identity.
var AnonymousUser = UserInfo{}

// IsAnonymous reports whether this identity is the anonymous user.
func (u UserInfo) IsAnonymous() bool {
	return u.UserID == 0
}

// Equal reports whether two UserInfo values denote the same identity
// (by UserID only — schemes/lastUsed do not participate in identity).
func (u UserInfo) Equal(other UserInfo) bool {
	return u.UserID == other.UserID
}

// AuthenticationInfo is the immutable core authentication record (spec §3).
type AuthenticationInfo struct {
	actualUser      UserInfo
	user            UserInfo
	expires         *time.Time
	criticalExpires *time.Time
	deviceID        string
}

// None is the distinguished info carrying no identity, no expiration, and
// no device id. It is never persisted to a cookie.
var None = AuthenticationInfo{}

// Create builds a fresh AuthenticationInfo for a non-impersonated user.
func Create(user UserInfo, expires, criticalExpires *time.Time, deviceID string) AuthenticationInfo {
	return AuthenticationInfo{
		actualUser:      user,
		user:            user,
		expires:         clonePtr(expires),
		criticalExpires: clonePtr(criticalExpires),
		deviceID:        deviceID,
	}
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// ActualUser returns the real operator's identity.
func (a AuthenticationInfo) ActualUser() UserInfo { return a.actualUser }

// User returns the effective identity (may be impersonated).
func (a AuthenticationInfo) User() UserInfo { return a.user }

// Expires returns the normal expiration, or nil if absent.
func (a AuthenticationInfo) Expires() *time.Time { return clonePtr(a.expires) }

// CriticalExpires returns the critical-level expiration, or nil if absent.
func (a AuthenticationInfo) CriticalExpires() *time.Time { return clonePtr(a.criticalExpires) }

// DeviceID returns the per-browser device identifier.
func (a AuthenticationInfo) DeviceID() string { return a.deviceID }

// IsImpersonated reports whether User differs from ActualUser.
func (a AuthenticationInfo) IsImpersonated() bool {
	return !a.user.Equal(a.actualUser)
}

// Level derives the authentication strength as of now (spec §3).
func (a AuthenticationInfo) Level(now time.Time) Level {
	if a.actualUser.IsAnonymous() && a.expires == nil {
		return LevelNone
	}
	if a.expires == nil || !a.expires.After(now) {
		return LevelUnsafe
	}
	if a.criticalExpires != nil && a.criticalExpires.After(now) {
		return LevelCritical
	}
	return LevelNormal
}

// SetExpires returns a copy with Expires set to t, clamping CriticalExpires
// down to t if it would otherwise exceed it.
func (a AuthenticationInfo) SetExpires(t time.Time) AuthenticationInfo {
	out := a
	out.expires = &t
	if out.criticalExpires != nil && out.criticalExpires.After(t) {
		clamped := t
		out.criticalExpires = &clamped
	}
	return out
}

// SetCriticalExpires returns a copy with CriticalExpires set to t, clamped
// so it never exceeds Expires.
func (a AuthenticationInfo) SetCriticalExpires(t time.Time) AuthenticationInfo {
	out := a
	if out.expires != nil && t.After(*out.expires) {
		t = *out.expires
	}
	out.criticalExpires = &t
	return out
}

// ClearCriticalExpires returns a copy with no critical expiration.
func (a AuthenticationInfo) ClearCriticalExpires() AuthenticationInfo {
	out := a
	out.criticalExpires = nil
	return out
}

// Impersonate returns a copy acting as other while preserving ActualUser.
func (a AuthenticationInfo) Impersonate(other UserInfo) AuthenticationInfo {
	out := a
	out.user = other
	return out
}

// ClearImpersonation returns a copy with User reset to ActualUser.
func (a AuthenticationInfo) ClearImpersonation() AuthenticationInfo {
	out := a
	out.user = a.actualUser
	return out
}

// WithDeviceID returns a copy carrying a different device id.
func (a AuthenticationInfo) WithDeviceID(id string) AuthenticationInfo {
	out := a
	out.deviceID = id
	return out
}

// CheckExpiration returns self, or a demoted copy with stale Expires /
// CriticalExpires cleared, as of now. This is the only operation that can
// lower Level purely from the passage of time (spec §8: level monotonicity).
func (a AuthenticationInfo) CheckExpiration(now time.Time) AuthenticationInfo {
	out := a
	changed := false
	if out.expires != nil && !out.expires.After(now) {
		out.expires = nil
		changed = true
	}
	if out.criticalExpires != nil && !out.criticalExpires.After(now) {
		out.criticalExpires = nil
		changed = true
	}
	if !changed {
		return a
	}
	return out
}

// FrontAuthenticationInfo pairs an AuthenticationInfo with the RememberMe
// flag that governs cookie persistence policy (spec §3).
type FrontAuthenticationInfo struct {
	Info       AuthenticationInfo
	RememberMe bool
}
