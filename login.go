package frontauth

import (
	"context"
	"net/http"

	"github.com/nordframe/frontauth/internal/deviceid"
	"github.com/nordframe/frontauth/internal/flows"
)

// Login runs the full C4 state machine (spec §4.4) for the given scheme:
// it creates the backend's payload from r, validates lc's parameters,
// calls the backend (wrapped in panic recovery), and on success commits
// device-id propagation, expiration computation, and impersonation
// handling. It does not write cookies or a response body — call
// SetCookies/BuildResponse with the returned Outcome.
func (e *Engine) Login(ctx context.Context, r *http.Request, lc *LoginContext, current FrontAuthenticationInfo, scheme string) (Outcome, error) {
	backend, ok := e.backends[scheme]
	if !ok {
		return Outcome{}, ErrNoBackend
	}

	payload, err := backend.CreatePayload(r, scheme)
	if err != nil {
		return Outcome{}, err
	}

	loginFn := func(ctx context.Context, actualLogin bool) (*UserLoginResult, error) {
		return backend.Login(ctx, scheme, payload, actualLogin)
	}

	return e.unifiedLogin(ctx, lc, current, loginFn), nil
}

// UnifiedLogin exposes the orchestrator directly for callers who already
// have a LoginFn in hand (the refresh, unsafe-direct-login, and
// impersonate entry points all reduce to this).
func (e *Engine) UnifiedLogin(ctx context.Context, lc *LoginContext, current FrontAuthenticationInfo, loginFn func(ctx context.Context, actualLogin bool) (*UserLoginResult, error)) Outcome {
	return e.unifiedLogin(ctx, lc, current, loginFn)
}

func (e *Engine) unifiedLogin(ctx context.Context, lc *LoginContext, current FrontAuthenticationInfo, loginFn flows.LoginFn) Outcome {
	dyn := e.dynamicOptions()

	deps := flows.Deps{
		Now:                     e.now,
		AllowedReturnURLs:       e.static.AllowedReturnURLs,
		ExpireTimeSpan:          dyn.ExpireTimeSpan,
		SchemesCriticalTimeSpan: dyn.SchemesCriticalTimeSpan,
		Validator:               e.validator,
		AutoBind:                e.autoBind,
		AutoCreate:              e.autoCreate,
		NewDeviceID:             deviceid.New,
		MetricInc:               e.metrics.Inc,
		EmitAudit:               e.emitAudit,
	}

	out := flows.UnifiedLogin(ctx, lc, current, loginFn, deps)
	return Outcome{Info: out.Info, Err: out.Err}
}

// Impersonate switches the effective identity on current to target while
// preserving ActualUser (spec §4.6 "Impersonate"). It does not run the
// login state machine — impersonation is a direct transition on an
// already-authenticated session, not a new login.
func (e *Engine) Impersonate(current FrontAuthenticationInfo, target UserInfo) FrontAuthenticationInfo {
	e.metrics.Inc(MetricImpersonationStarted)
	return FrontAuthenticationInfo{
		Info:       current.Info.Impersonate(target),
		RememberMe: current.RememberMe,
	}
}

// ClearImpersonation resets User back to ActualUser (spec §4.6).
func (e *Engine) ClearImpersonation(current FrontAuthenticationInfo) FrontAuthenticationInfo {
	e.metrics.Inc(MetricImpersonationCleared)
	return FrontAuthenticationInfo{
		Info:       current.Info.ClearImpersonation(),
		RememberMe: current.RememberMe,
	}
}
