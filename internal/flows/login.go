package flows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nordframe/frontauth/internal/authinfo"
	"github.com/nordframe/frontauth/internal/metrics"
)

// Deps captures everything UnifiedLogin needs beyond the backend call
// itself: the dynamic options it must re-read per request (spec §5),
// the optional validator/auto-bind/auto-create capabilities (spec §9 —
// absence, not a no-op, models "not configured"), and the host's
// metrics/audit/device-id hooks.
type Deps struct {
	Now func() time.Time

	AllowedReturnURLs       []string
	ExpireTimeSpan          time.Duration
	SchemesCriticalTimeSpan map[string]time.Duration

	Validator  ValidatorFn
	AutoBind   SideServiceFn
	AutoCreate SideServiceFn

	NewDeviceID func() (string, error)

	MetricInc func(metrics.MetricID)
	EmitAudit func(ctx context.Context, eventType string, success bool, userID uint64, deviceID, scheme string, err error)
}

func (d *Deps) metricInc(id metrics.MetricID) {
	if d.MetricInc != nil {
		d.MetricInc(id)
	}
}

func (d *Deps) emitAudit(ctx context.Context, eventType string, success bool, userID uint64, deviceID, scheme string, err error) {
	if d.EmitAudit != nil {
		d.EmitAudit(ctx, eventType, success, userID, deviceID, scheme, err)
	}
}

// Outcome is what UnifiedLogin produces: either a new front authentication
// info to commit, or a structured error to hand to the response builder.
// On success Err is nil. On failure Err is set and Info is still filled in:
// a failed login returns a usable anonymous Info that keeps the device id,
// per spec §4.4's "failure → anonymous" rule.
type Outcome struct {
	Info authinfo.FrontAuthenticationInfo
	Err  *LoginError
}

// UnifiedLogin runs the full C4 state machine described in spec §4.4:
// validate parameters, call the backend (by way of SafeCallLogin), branch
// on success/failure (auto-bind, auto-create, or plain failure), and on
// success compute the resulting expiration/device-id/impersonation state.
func UnifiedLogin(ctx context.Context, lc *LoginContext, initial authinfo.FrontAuthenticationInfo, loginFn LoginFn, deps Deps) Outcome {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	if verr := ValidateCoreParameters(lc, initial.Info, deps.AllowedReturnURLs); verr != nil {
		deps.auditFailure(ctx, "login.validation_rejected", lc, initial, verr)
		return Outcome{Info: anonymousFailure(initial), Err: verr}
	}

	actualLogin := deps.Validator == nil
	result, err := safeCallLogin(ctx, loginFn, actualLogin)
	if err != nil {
		lerr := callError(err)
		deps.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}

	if !result.IsSuccess() {
		return deps.handleFailure(ctx, lc, initial, result)
	}

	if deps.Validator != nil {
		if verr := deps.Validator(ctx, lc, result); verr != nil {
			lerr := exceptionError(verr)
			deps.auditFailure(ctx, "login.validation_rejected", lc, initial, lerr)
			return Outcome{Info: anonymousFailure(initial), Err: lerr}
		}
		committed, err := safeCallLogin(ctx, loginFn, true)
		if err != nil {
			lerr := callError(err)
			deps.auditFailure(ctx, "login.failure", lc, initial, lerr)
			return Outcome{Info: anonymousFailure(initial), Err: lerr}
		}
		if !committed.IsSuccess() {
			return deps.handleFailure(ctx, lc, initial, committed)
		}
		result = committed
	}

	return deps.commitSuccess(ctx, lc, initial, result, now())
}

// callError converts a safeCallLogin error into a LoginError: a backend
// that returned no result and no error is reported as InternalError, any
// other error as an exception.
func callError(err error) *LoginError {
	if errors.Is(err, errInternalNilResult) {
		return &LoginError{ID: ErrInternalError, Text: err.Error()}
	}
	return exceptionError(err)
}

// auditFailure emits a login-outcome audit event for any non-success return,
// mirroring commitSuccess's "login.success" emit so every outcome — not
// just successful ones — produces exactly one AuditEvent.
func (d *Deps) auditFailure(ctx context.Context, eventType string, lc *LoginContext, initial authinfo.FrontAuthenticationInfo, lerr *LoginError) {
	d.emitAudit(ctx, eventType, false, initial.Info.ActualUser().UserID, initial.Info.DeviceID(), lc.CallingScheme, lerr)
}

// safeCallLogin wraps loginFn so a panicking backend is converted into an
// error instead of taking down the request goroutine (spec §7: "backend
// exceptions are caught, logged, and converted to context errors"). A nil
// result with a nil error is the orchestrator's own invariant violation and
// is reported as InternalError by the caller.
func safeCallLogin(ctx context.Context, loginFn LoginFn, actualLogin bool) (res *UserLoginResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("login backend panic: %v", r)
		}
	}()
	res, err = loginFn(ctx, actualLogin)
	if err == nil && res == nil {
		err = errInternalNilResult
	}
	return res, err
}

var errInternalNilResult = fmt.Errorf("login backend returned no result and no error")

func (d *Deps) handleFailure(ctx context.Context, lc *LoginContext, initial authinfo.FrontAuthenticationInfo, u *UserLoginResult) Outcome {
	d.metricInc(metrics.LoginFailure)

	if lc.ImpersonateActualUser {
		lerr := loginFailureError(u)
		d.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}

	if u.IsUnregisteredUser {
		if initial.Info.ActualUser().UserID != 0 {
			return d.runSideService(ctx, "auto-bind", d.AutoBind, ErrAutoBindingDisabled,
				metrics.AutoBindInvoked, metrics.AutoBindSuccess, metrics.AutoBindDisabled,
				lc, initial, u)
		}
		return d.runSideService(ctx, "auto-create", d.AutoCreate, ErrAutoRegistrationDisabled,
			metrics.AutoCreateInvoked, metrics.AutoCreateSuccess, metrics.AutoRegistrationDisabled,
			lc, initial, u)
	}

	lerr := loginFailureError(u)
	d.auditFailure(ctx, "login.failure", lc, initial, lerr)
	return Outcome{Info: anonymousFailure(initial), Err: lerr}
}

func (d *Deps) runSideService(
	ctx context.Context,
	name string,
	svc SideServiceFn,
	disabledID ErrorID,
	invokedMetric, successMetric, disabledMetric metrics.MetricID,
	lc *LoginContext,
	initial authinfo.FrontAuthenticationInfo,
	failed *UserLoginResult,
) Outcome {
	if svc == nil {
		d.metricInc(disabledMetric)
		lerr := namedError(disabledID)
		d.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}

	d.metricInc(invokedMetric)
	replacement, err := svc(ctx, lc, failed)
	if err != nil {
		lerr := exceptionError(err)
		d.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}
	if replacement == nil {
		d.metricInc(disabledMetric)
		lerr := namedError(disabledID)
		d.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}
	if !replacement.IsSuccess() {
		lerr := loginFailureError(replacement)
		d.auditFailure(ctx, "login.failure", lc, initial, lerr)
		return Outcome{Info: anonymousFailure(initial), Err: lerr}
	}

	d.metricInc(successMetric)
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return d.commitSuccess(ctx, lc, initial, replacement, now())
}

// commitSuccess applies device-id propagation, expiration computation, and
// impersonation handling (spec §4.4) to turn a successful UserLoginResult
// into the next FrontAuthenticationInfo.
func (d *Deps) commitSuccess(ctx context.Context, lc *LoginContext, initial authinfo.FrontAuthenticationInfo, u *UserLoginResult, now time.Time) Outcome {
	initialInfo := initial.Info

	deviceID := initialInfo.DeviceID()
	if deviceID == "" {
		id, err := d.NewDeviceID()
		if err != nil {
			lerr := &LoginError{ID: ErrInternalError, Text: err.Error()}
			d.auditFailure(ctx, "login.failure", lc, initial, lerr)
			return Outcome{Info: anonymousFailure(initial), Err: lerr}
		}
		deviceID = id
	}

	expires := now.Add(d.ExpireTimeSpan)
	var criticalExpires *time.Time
	if span, ok := d.SchemesCriticalTimeSpan[lc.CallingScheme]; ok && span > 0 {
		ce := now.Add(span)
		criticalExpires = &ce
		if ce.After(expires) {
			expires = ce
		}
	}

	actualUserID := initialInfo.ActualUser().UserID
	newUserID := u.UserInfo.UserID

	var info authinfo.AuthenticationInfo
	if actualUserID != 0 && newUserID != 0 && actualUserID != newUserID {
		// Impersonating a distinct user: keep the existing identity record
		// (ActualUser stays put) and only switch the effective User.
		// TODO(impersonation-critical-span): the scheme critical time span
		// is applied to Expires only, never to CriticalExpires, for this
		// branch. This mirrors the known upstream limitation; do not
		// "fix" it without revisiting every caller that reads
		// CriticalExpires during an impersonated session.
		d.metricInc(metrics.ImpersonationStarted)
		info = initialInfo.Impersonate(*u.UserInfo).SetExpires(expires).WithDeviceID(deviceID)
	} else {
		info = authinfo.Create(*u.UserInfo, &expires, criticalExpires, deviceID)
	}

	d.metricInc(metrics.LoginSuccess)
	d.emitAudit(ctx, "login.success", true, u.UserInfo.UserID, deviceID, lc.CallingScheme, nil)

	return Outcome{Info: authinfo.FrontAuthenticationInfo{Info: info, RememberMe: lc.RememberMe}}
}

// anonymousFailure replaces current info with a fresh anonymous one that
// preserves DeviceID (spec §8: "device-id preservation") and is never
// remembered (spec §9 open question: anonymous users never remember).
func anonymousFailure(initial authinfo.FrontAuthenticationInfo) authinfo.FrontAuthenticationInfo {
	deviceID := initial.Info.DeviceID()
	return authinfo.FrontAuthenticationInfo{
		Info:       authinfo.Create(authinfo.AnonymousUser, nil, nil, deviceID),
		RememberMe: false,
	}
}
