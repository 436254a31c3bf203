package internaldefs

import (
	"github.com/nordframe/frontauth"
)

// CounterDef names one counter metric for export.
type CounterDef struct {
	ID   frontauth.MetricID
	Name string
	Help string
}

// HistogramDef names one histogram metric for export.
type HistogramDef struct {
	ID   frontauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the engine tracks, in the order
// exporters should render them.
var CounterDefs = []CounterDef{
	{ID: frontauth.MetricBearerResolved, Name: "frontauth_bearer_resolved_total", Help: "Requests resolved from the bearer token."},
	{ID: frontauth.MetricSessionCookieResolved, Name: "frontauth_session_cookie_resolved_total", Help: "Requests resolved from the session cookie."},
	{ID: frontauth.MetricLongTermCookieResolved, Name: "frontauth_long_term_cookie_resolved_total", Help: "Requests resolved from the long-term cookie."},
	{ID: frontauth.MetricSynthesized, Name: "frontauth_synthesized_total", Help: "Requests given a synthesized anonymous identity."},
	{ID: frontauth.MetricEmptyResolved, Name: "frontauth_empty_resolved_total", Help: "Requests resolved with no envelope and no synthesis."},
	{ID: frontauth.MetricEnvelopeDecodeFailure, Name: "frontauth_envelope_decode_failure_total", Help: "Envelopes that failed to decode or authenticate."},
	{ID: frontauth.MetricSlidingRenewed, Name: "frontauth_sliding_renewed_total", Help: "Sessions whose sliding expiration was renewed."},
	{ID: frontauth.MetricLoginSuccess, Name: "frontauth_login_success_total", Help: "Successful login attempts."},
	{ID: frontauth.MetricLoginFailure, Name: "frontauth_login_failure_total", Help: "Failed login attempts."},
	{ID: frontauth.MetricAutoBindInvoked, Name: "frontauth_auto_bind_invoked_total", Help: "Auto-bind side-service invocations."},
	{ID: frontauth.MetricAutoBindSuccess, Name: "frontauth_auto_bind_success_total", Help: "Successful auto-bind account bindings."},
	{ID: frontauth.MetricAutoBindDisabled, Name: "frontauth_auto_bind_disabled_total", Help: "Auto-bind attempts rejected because no service was configured."},
	{ID: frontauth.MetricAutoCreateInvoked, Name: "frontauth_auto_create_invoked_total", Help: "Auto-create side-service invocations."},
	{ID: frontauth.MetricAutoCreateSuccess, Name: "frontauth_auto_create_success_total", Help: "Successful auto-created accounts."},
	{ID: frontauth.MetricAutoRegistrationDisabled, Name: "frontauth_auto_registration_disabled_total", Help: "Auto-create attempts rejected because no service was configured."},
	{ID: frontauth.MetricImpersonationStarted, Name: "frontauth_impersonation_started_total", Help: "Impersonation sessions started."},
	{ID: frontauth.MetricImpersonationCleared, Name: "frontauth_impersonation_cleared_total", Help: "Impersonation sessions cleared."},
	{ID: frontauth.MetricLogout, Name: "frontauth_logout_total", Help: "Logout operations."},
	{ID: frontauth.MetricCookieWriteSession, Name: "frontauth_cookie_write_session_total", Help: "Session cookies written."},
	{ID: frontauth.MetricCookieWriteLongTerm, Name: "frontauth_cookie_write_long_term_total", Help: "Long-term cookies written."},
	{ID: frontauth.MetricCookieClear, Name: "frontauth_cookie_clear_total", Help: "Cookies cleared."},
}

// HistogramDefs lists every histogram the engine tracks.
var HistogramDefs = []HistogramDef{
	{ID: frontauth.MetricResolveLatency, Name: "frontauth_resolve_latency_seconds", Help: "EnsureAuthenticationInfo latency histogram."},
}

// HistogramBounds are the upper bound labels, in bucket order, matching
// internal/metrics' fixed 8-bucket layout.
var HistogramBounds = []string{
	"0.001",
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"+Inf",
}

// HistogramBoundSuffix mirrors HistogramBounds as OTel-safe metric name
// suffixes (no '.', no '+').
var HistogramBoundSuffix = []string{
	"0_001",
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"inf",
}

// NormalizeBuckets copies raw per-bucket counts into the fixed 8-slot
// layout exporters render, defending against a short or nil slice from a
// snapshot that never observed that histogram.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into Prometheus/OTel's
// cumulative "le" convention.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
