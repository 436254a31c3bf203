package flows

import (
	"strings"

	"github.com/nordframe/frontauth/internal/authinfo"
)

// ValidateCoreParameters checks the three parameter-validation rules spec
// §4.4 requires before any backend call is attempted.
func ValidateCoreParameters(lc *LoginContext, current authinfo.AuthenticationInfo, allowedReturnURLs []string) *LoginError {
	if lc.Mode == ModeStartLogin {
		hasReturn := lc.ReturnURL != ""
		hasCaller := lc.CallerOrigin != ""
		if hasReturn == hasCaller {
			return namedError(ErrReturnXOrCaller)
		}
	}

	if current.IsImpersonated() && !lc.ImpersonateActualUser {
		return namedError(ErrLoginWhileImpersonation)
	}

	if lc.ReturnURL != "" {
		allowed := false
		for _, prefix := range allowedReturnURLs {
			if strings.HasPrefix(lc.ReturnURL, prefix) {
				allowed = true
				break
			}
		}
		if !allowed {
			return namedError(ErrDisallowedReturnURL)
		}
	}

	return nil
}
