package middleware

import (
	"net/http"

	"github.com/nordframe/frontauth"
)

// RequireNormal is RequireLevel pinned to LevelNormal, the minimum level a
// registered, non-expired user satisfies.
func RequireNormal() func(http.Handler) http.Handler {
	return RequireLevel(frontauth.LevelNormal, nil)
}
