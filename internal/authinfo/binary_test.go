package authinfo

import (
	"testing"
	"time"
)

func sampleFront() FrontAuthenticationInfo {
	now := time.Now().Truncate(time.Second)
	user := UserInfo{
		UserID:   42,
		UserName: "alice",
		Schemes:  []Scheme{{Name: "Basic", LastUsedAt: now}},
	}
	info := Create(user, ptr(now.Add(time.Hour)), ptr(now.Add(30*time.Minute)), "device-1")
	return FrontAuthenticationInfo{Info: info, RememberMe: true}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := sampleFront()

	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.RememberMe != original.RememberMe {
		t.Fatalf("RememberMe mismatch")
	}
	if decoded.Info.User().UserID != original.Info.User().UserID {
		t.Fatalf("UserID mismatch: got %d want %d", decoded.Info.User().UserID, original.Info.User().UserID)
	}
	if decoded.Info.User().UserName != original.Info.User().UserName {
		t.Fatalf("UserName mismatch")
	}
	if decoded.Info.DeviceID() != original.Info.DeviceID() {
		t.Fatalf("DeviceID mismatch")
	}
	if !decoded.Info.Expires().Equal(*original.Info.Expires()) {
		t.Fatalf("Expires mismatch")
	}
	if !decoded.Info.CriticalExpires().Equal(*original.Info.CriticalExpires()) {
		t.Fatalf("CriticalExpires mismatch")
	}
}

func TestBinaryRoundTripAnonymous(t *testing.T) {
	info := Create(AnonymousUser, nil, nil, "device-2")
	front := FrontAuthenticationInfo{Info: info, RememberMe: false}

	encoded, err := Encode(front)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Info.User().IsAnonymous() {
		t.Fatalf("expected anonymous user")
	}
	if decoded.Info.DeviceID() != "device-2" {
		t.Fatalf("device id mismatch")
	}
}

func TestBinaryTruncatedIsError(t *testing.T) {
	original := sampleFront()
	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if _, err := Decode(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected error decoding truncated envelope")
	}
	if _, err := Decode(nil); err == nil {
		t.Fatalf("expected error decoding empty envelope")
	}
}

func TestBinaryMissingRememberMeByte(t *testing.T) {
	original := sampleFront()
	encoded, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Drop exactly the trailing rememberMe byte.
	if _, err := Decode(encoded[:len(encoded)-1]); err == nil {
		t.Fatalf("expected missing rememberMe byte error")
	}
}
