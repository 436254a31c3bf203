package authinfo

import (
	"testing"
	"time"
)

func TestLevelDerivation(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		info AuthenticationInfo
		want Level
	}{
		{"anonymous no expiry", Create(AnonymousUser, nil, nil, ""), LevelNone},
		{
			"anonymous past expiry",
			Create(AnonymousUser, ptr(now.Add(-time.Hour)), nil, ""),
			LevelUnsafe,
		},
		{
			"user no expiry",
			Create(UserInfo{UserID: 1}, nil, nil, ""),
			LevelUnsafe,
		},
		{
			"user future expiry",
			Create(UserInfo{UserID: 1}, ptr(now.Add(time.Hour)), nil, ""),
			LevelNormal,
		},
		{
			"user future expiry and critical",
			Create(UserInfo{UserID: 1}, ptr(now.Add(time.Hour)), ptr(now.Add(30*time.Minute)), ""),
			LevelCritical,
		},
		{
			"critical past does not elevate",
			Create(UserInfo{UserID: 1}, ptr(now.Add(time.Hour)), ptr(now.Add(-time.Minute)), ""),
			LevelNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Level(now); got != tt.want {
				t.Fatalf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelMonotonicityOverTime(t *testing.T) {
	now := time.Now()
	info := Create(UserInfo{UserID: 1}, ptr(now.Add(time.Hour)), ptr(now.Add(30*time.Minute)), "d1")

	levels := []Level{
		info.Level(now),
		info.Level(now.Add(31 * time.Minute)),
		info.Level(now.Add(61 * time.Minute)),
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1] {
			t.Fatalf("level increased over time: %v -> %v", levels[i-1], levels[i])
		}
	}
	if levels[2] != LevelUnsafe {
		t.Fatalf("expected Unsafe after expiry, got %v", levels[2])
	}
}

func TestImpersonationPreservesActualUser(t *testing.T) {
	original := Create(UserInfo{UserID: 1, UserName: "alice"}, nil, nil, "d1")
	impersonated := original.Impersonate(UserInfo{UserID: 2, UserName: "bob"})

	if impersonated.ActualUser().UserID != original.ActualUser().UserID {
		t.Fatalf("Impersonate changed ActualUser")
	}
	if !impersonated.IsImpersonated() {
		t.Fatalf("expected IsImpersonated() == true")
	}

	cleared := impersonated.ClearImpersonation()
	if cleared.IsImpersonated() {
		t.Fatalf("expected ClearImpersonation to restore identity")
	}
	if cleared.User().UserID != original.User().UserID {
		t.Fatalf("ClearImpersonation did not restore original user")
	}
}

func TestCheckExpirationClearsStaleTimestamps(t *testing.T) {
	now := time.Now()
	info := Create(UserInfo{UserID: 1}, ptr(now.Add(-time.Hour)), ptr(now.Add(-2*time.Hour)), "d1")

	checked := info.CheckExpiration(now)
	if checked.Expires() != nil || checked.CriticalExpires() != nil {
		t.Fatalf("expected both timestamps cleared, got expires=%v cexp=%v", checked.Expires(), checked.CriticalExpires())
	}
	if checked.Level(now) != LevelUnsafe {
		t.Fatalf("expected demoted level Unsafe, got %v", checked.Level(now))
	}
}

func TestSetExpiresClampsCritical(t *testing.T) {
	now := time.Now()
	info := Create(UserInfo{UserID: 1}, ptr(now.Add(2*time.Hour)), ptr(now.Add(time.Hour)), "")

	shortened := info.SetExpires(now.Add(30 * time.Minute))
	if shortened.CriticalExpires().After(*shortened.Expires()) {
		t.Fatalf("criticalExpires not clamped to new expires")
	}
}

func ptr(t time.Time) *time.Time { return &t }
