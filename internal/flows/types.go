// Package flows implements the login state machine (C4): parameter
// validation, the backend call, the validator/auto-bind/auto-create
// branches, and the expiration/device-id/impersonation rules that turn a
// UserLoginResult into the next FrontAuthenticationInfo.
package flows

import (
	"context"

	"github.com/nordframe/frontauth/internal/authinfo"
)

// Mode distinguishes the one login entry point that requires exactly one of
// ReturnURL/CallerOrigin from every other login-producing path (refresh,
// impersonate, unsafe direct login).
type Mode int

const (
	ModeStartLogin Mode = iota
	ModeOther
)

// UserLoginResult is the login-service contract's response shape.
// IsSuccess is true iff UserInfo is non-nil; a nil result overall (as
// opposed to a non-nil result with a nil UserInfo) is never valid — SafeCallLogin
// converts a nil result into InternalError.
type UserLoginResult struct {
	UserInfo           *authinfo.UserInfo
	LoginFailureCode   int
	LoginFailureReason string
	IsUnregisteredUser bool
}

// IsSuccess reports whether the login attempt produced an identity.
func (r *UserLoginResult) IsSuccess() bool {
	return r != nil && r.UserInfo != nil
}

// LoginContext carries the per-call parameters the orchestrator validates
// and threads through to the side services and the response builder.
type LoginContext struct {
	Mode Mode

	ReturnURL    string
	CallerOrigin string

	ImpersonateActualUser bool

	InitialScheme string
	CallingScheme string

	// RememberMe is the caller's "remember me" request; it is honored only
	// along the success path — a failed login always yields an
	// unremembered anonymous result.
	RememberMe bool

	// UserData is opaque scheme-specific payload echoed back in failure
	// responses by the response builder; the orchestrator never inspects it.
	UserData any
}

// LoginFn wraps the configured login backend. actualLogin distinguishes a
// validator dry-run (false) from the call that commits the login (true).
type LoginFn func(ctx context.Context, actualLogin bool) (*UserLoginResult, error)

// ValidatorFn runs after a successful backend login and before commit. A
// nil error approves the dry-run result; SafeCallLogin(true) is then called
// to commit. Absence of this field on Deps means "no validator configured".
type ValidatorFn func(ctx context.Context, lc *LoginContext, result *UserLoginResult) error

// SideServiceFn is the shared contract for the auto-bind and auto-create
// services: a nil result with a nil error means "not my responsibility,"
// in which case the orchestrator falls back to its own disabled-policy
// error; a non-nil error is an exception from the service itself.
type SideServiceFn func(ctx context.Context, lc *LoginContext, failed *UserLoginResult) (*UserLoginResult, error)
