package flows

import "fmt"

// ErrorID is one of the stable string identifiers the response builder (C5)
// surfaces to the client (spec §7).
type ErrorID string

const (
	ErrReturnXOrCaller         ErrorID = "ReturnXOrCaller"
	ErrDisallowedReturnURL     ErrorID = "DisallowedReturnUrl"
	ErrLoginWhileImpersonation ErrorID = "LoginWhileImpersonation"
	ErrAutoBindingDisabled     ErrorID = "Account.AutoBindingDisabled"
	ErrAutoRegistrationDisabled ErrorID = "User.AutoRegistrationDisabled"
	ErrInternalError           ErrorID = "InternalError"
)

// LoginError is the structured failure the orchestrator returns. Exactly
// one of (ID set, text optional) or (HasLoginFailure, code, reason) is
// populated, matching the two failure shapes in spec §4.5/§7: a named
// policy/validation error, or a scheme-reported login failure.
type LoginError struct {
	ID   ErrorID
	Text string

	HasLoginFailure    bool
	LoginFailureCode   int
	LoginFailureReason string
}

func (e *LoginError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.HasLoginFailure {
		if e.LoginFailureReason != "" {
			return fmt.Sprintf("login failure %d: %s", e.LoginFailureCode, e.LoginFailureReason)
		}
		return fmt.Sprintf("login failure %d", e.LoginFailureCode)
	}
	if e.Text != "" && e.Text != string(e.ID) {
		return fmt.Sprintf("%s: %s", e.ID, e.Text)
	}
	return string(e.ID)
}

func namedError(id ErrorID) *LoginError {
	return &LoginError{ID: id, Text: string(id)}
}

func loginFailureError(u *UserLoginResult) *LoginError {
	return &LoginError{
		HasLoginFailure:    true,
		LoginFailureCode:   u.LoginFailureCode,
		LoginFailureReason: u.LoginFailureReason,
	}
}

// exceptionError converts a backend/service error into the
// errorId=exception-type-name, errorText=exception-message shape spec §7
// calls for. Go has no exception type names, so the error's dynamic type
// (via %T) stands in for it.
func exceptionError(err error) *LoginError {
	return &LoginError{ID: ErrorID(fmt.Sprintf("%T", err)), Text: err.Error()}
}
