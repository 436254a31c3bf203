package frontauth

import (
	"context"
	"io"
	"net/http"

	internalaudit "github.com/nordframe/frontauth/internal/audit"
	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/internal/flows"
	internalmetrics "github.com/nordframe/frontauth/internal/metrics"
)

// UserInfo is the immutable identity type spec §3 defines: UserID == 0 iff
// anonymous iff Schemes is empty.
type UserInfo = authinfo.UserInfo

// Scheme records that a login scheme was used, and when.
type Scheme = authinfo.Scheme

// AnonymousUser is the distinguished zero-value anonymous identity.
var AnonymousUser = authinfo.AnonymousUser

// AuthenticationInfo is the immutable authentication record (spec §3, §6).
type AuthenticationInfo = authinfo.AuthenticationInfo

// FrontAuthenticationInfo pairs an AuthenticationInfo with the RememberMe
// flag (spec §3).
type FrontAuthenticationInfo = authinfo.FrontAuthenticationInfo

// Level is the derived authentication strength (spec §3).
type Level = authinfo.Level

const (
	LevelNone     = authinfo.LevelNone
	LevelUnsafe   = authinfo.LevelUnsafe
	LevelNormal   = authinfo.LevelNormal
	LevelCritical = authinfo.LevelCritical
)

// Mode distinguishes the login entry point that requires exactly one of
// ReturnURL/CallerOrigin (spec §4.4) from every other login-producing path.
type Mode = flows.Mode

const (
	ModeStartLogin = flows.ModeStartLogin
	ModeOther      = flows.ModeOther
)

// UserLoginResult is the login-service contract's response shape (spec §6).
type UserLoginResult = flows.UserLoginResult

// LoginContext carries the per-call parameters the orchestrator validates
// and threads through to the side services and the response builder.
type LoginContext = flows.LoginContext

// ValidatorFunc runs after a successful backend login and before commit
// (spec §4.4, §9). A missing Validator on the Builder means "not
// configured" — the orchestrator skips the dry-run/commit split entirely.
type ValidatorFunc = flows.ValidatorFn

// SideServiceFunc is the shared contract for the auto-bind and auto-create
// services (spec §4.4, §6): a nil result with a nil error means "not my
// responsibility," which the orchestrator turns into the matching
// disabled-policy error.
type SideServiceFunc = flows.SideServiceFn

// ErrorID is one of the stable string identifiers the response builder
// surfaces to the client (spec §7).
type ErrorID = flows.ErrorID

const (
	ErrIDReturnXOrCaller          = flows.ErrReturnXOrCaller
	ErrIDDisallowedReturnURL      = flows.ErrDisallowedReturnURL
	ErrIDLoginWhileImpersonation  = flows.ErrLoginWhileImpersonation
	ErrIDAutoBindingDisabled      = flows.ErrAutoBindingDisabled
	ErrIDAutoRegistrationDisabled = flows.ErrAutoRegistrationDisabled
	ErrIDInternalError            = flows.ErrInternalError
)

// LoginError is the structured failure UnifiedLogin returns (spec §4.5, §7).
type LoginError = flows.LoginError

// LoginService is the pluggable login backend contract consumed by the
// orchestrator (spec §6). CreatePayload extracts whatever a scheme needs
// from the inbound request (a basic-auth pair, an OAuth callback code,
// ...); Login runs it, with actualLogin distinguishing a validator dry-run
// from the call that commits the login.
type LoginService interface {
	CreatePayload(r *http.Request, scheme string) (any, error)
	Login(ctx context.Context, scheme string, payload any, actualLogin bool) (*UserLoginResult, error)
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives AuditEvent values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an AuditSink that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based AuditSink.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an AuditSink that writes JSON-encoded events to an
// io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a JSONWriterSink that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a counter or histogram tracked by the engine.
type MetricID = internalmetrics.MetricID

const (
	MetricBearerResolved           = internalmetrics.BearerResolved
	MetricSessionCookieResolved    = internalmetrics.SessionCookieResolved
	MetricLongTermCookieResolved   = internalmetrics.LongTermCookieResolved
	MetricSynthesized              = internalmetrics.Synthesized
	MetricEmptyResolved            = internalmetrics.EmptyResolved
	MetricEnvelopeDecodeFailure    = internalmetrics.EnvelopeDecodeFailure
	MetricSlidingRenewed           = internalmetrics.SlidingRenewed
	MetricLoginSuccess             = internalmetrics.LoginSuccess
	MetricLoginFailure             = internalmetrics.LoginFailure
	MetricAutoBindInvoked          = internalmetrics.AutoBindInvoked
	MetricAutoBindSuccess          = internalmetrics.AutoBindSuccess
	MetricAutoBindDisabled         = internalmetrics.AutoBindDisabled
	MetricAutoCreateInvoked        = internalmetrics.AutoCreateInvoked
	MetricAutoCreateSuccess        = internalmetrics.AutoCreateSuccess
	MetricAutoRegistrationDisabled = internalmetrics.AutoRegistrationDisabled
	MetricImpersonationStarted     = internalmetrics.ImpersonationStarted
	MetricImpersonationCleared     = internalmetrics.ImpersonationCleared
	MetricLogout                   = internalmetrics.Logout
	MetricCookieWriteSession       = internalmetrics.CookieWriteSession
	MetricCookieWriteLongTerm      = internalmetrics.CookieWriteLongTerm
	MetricCookieClear              = internalmetrics.CookieClear
	MetricResolveLatency           = internalmetrics.ResolveLatency
)

// Metrics holds atomic counters and a resolve-latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new Metrics instance. When cfg.Enabled is false, all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
