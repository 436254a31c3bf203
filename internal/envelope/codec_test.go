package envelope

import (
	"testing"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/internal/extra"
	"github.com/nordframe/frontauth/internal/keyring"
)

func newCodec(t *testing.T) *Codec {
	t.Helper()
	ring, err := keyring.NewSingleKeyProvider(purposeCookie, purposeToken, purposeExtra)
	if err != nil {
		t.Fatalf("NewSingleKeyProvider: %v", err)
	}
	return New(ring)
}

func TestCodecTokenRoundTrip(t *testing.T) {
	c := newCodec(t)
	exp := time.Now().Add(time.Hour).UTC()
	f := authinfo.FrontAuthenticationInfo{
		Info:       authinfo.Create(authinfo.UserInfo{UserID: 3, UserName: "Nicole"}, &exp, nil, "D1"),
		RememberMe: true,
	}

	token, err := c.EncodeToken(f)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	got, err := c.DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if got.Info.User().UserID != 3 || got.Info.DeviceID() != "D1" || !got.RememberMe {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCodecCookieAndTokenAreDistinctPurposes(t *testing.T) {
	c := newCodec(t)
	f := authinfo.FrontAuthenticationInfo{Info: authinfo.Create(authinfo.UserInfo{UserID: 1}, nil, nil, "D1")}

	tok, err := c.EncodeToken(f)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	if _, err := c.DecodeCookie(tok); err == nil {
		t.Fatalf("expected cookie protector to reject a token-purpose envelope")
	}
}

func TestCodecExtraRoundTrip(t *testing.T) {
	c := newCodec(t)
	b := extra.New()
	b.SetString("WFA2S", "Basic")

	sealed, err := c.ProtectExtra(b)
	if err != nil {
		t.Fatalf("ProtectExtra: %v", err)
	}
	got, err := c.UnprotectExtra(sealed)
	if err != nil {
		t.Fatalf("UnprotectExtra: %v", err)
	}
	v, ok := got.Get("WFA2S")
	if !ok || v == nil || *v != "Basic" {
		t.Fatalf("extra round trip mismatch: %v %v", ok, v)
	}
}

func TestCodecDecodeTamperedTokenFails(t *testing.T) {
	c := newCodec(t)
	f := authinfo.FrontAuthenticationInfo{Info: authinfo.Create(authinfo.UserInfo{UserID: 1}, nil, nil, "D1")}
	tok, err := c.EncodeToken(f)
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}
	tampered := []byte(tok)
	tampered[0] ^= 0x01
	if _, err := c.DecodeToken(string(tampered)); err == nil {
		t.Fatalf("expected tampered token to fail decode")
	}
}
