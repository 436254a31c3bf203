// Package envelope is the Envelope Codec (C1): it wires the three
// purpose-scoped protectors onto authinfo's binary form and extra's bag
// form, giving the resolver and login orchestrator a single place that
// knows both "how to serialize" and "how to protect".
package envelope

import (
	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/internal/extra"
	"github.com/nordframe/frontauth/internal/protector"
)

const (
	purposeCookie = "Cookie" + "v1"
	purposeToken  = "Token" + "v1"
	purposeExtra  = "Extra" + "v1"
)

// Codec exposes the Cookie, Token, and Extra purpose-scoped protectors
// spec §4.1 requires, each derived from the same externally-managed key
// source.
type Codec struct {
	cookie *protector.Protector
	token  *protector.Protector
	extra  *protector.Protector
}

// Purposes returns the three purpose strings a KeySource must be able to
// serve before it can back a Codec.
func Purposes() []string {
	return []string{purposeCookie, purposeToken, purposeExtra}
}

// New builds a Codec backed by source (a static or Redis-backed key ring).
func New(source protector.KeySource) *Codec {
	return &Codec{
		cookie: protector.New(purposeCookie, source),
		token:  protector.New(purposeToken, source),
		extra:  protector.New(purposeExtra, source),
	}
}

// EncodeToken protects f for the bearer-token transport.
func (c *Codec) EncodeToken(f authinfo.FrontAuthenticationInfo) (string, error) {
	raw, err := authinfo.Encode(f)
	if err != nil {
		return "", err
	}
	return c.token.Protect(raw)
}

// DecodeToken reverses EncodeToken. A protector.ErrDecode or malformed
// binary body is returned unchanged; callers MUST treat it as an absent
// envelope (spec §4.1), not as an authentication failure.
func (c *Codec) DecodeToken(s string) (authinfo.FrontAuthenticationInfo, error) {
	raw, err := c.token.Unprotect(s)
	if err != nil {
		return authinfo.FrontAuthenticationInfo{}, err
	}
	return authinfo.Decode(raw)
}

// EncodeCookie protects f for the session-cookie transport.
func (c *Codec) EncodeCookie(f authinfo.FrontAuthenticationInfo) (string, error) {
	raw, err := authinfo.Encode(f)
	if err != nil {
		return "", err
	}
	return c.cookie.Protect(raw)
}

// DecodeCookie reverses EncodeCookie.
func (c *Codec) DecodeCookie(s string) (authinfo.FrontAuthenticationInfo, error) {
	raw, err := c.cookie.Unprotect(s)
	if err != nil {
		return authinfo.FrontAuthenticationInfo{}, err
	}
	return authinfo.Decode(raw)
}

// ProtectExtra seals an extra data bag for redirect-based carry (WFA2D).
func (c *Codec) ProtectExtra(b *extra.Bag) (string, error) {
	return extra.Protect(b, c.extra)
}

// UnprotectExtra reverses ProtectExtra.
func (c *Codec) UnprotectExtra(s string) (*extra.Bag, error) {
	return extra.Unprotect(s, c.extra)
}
