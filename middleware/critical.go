package middleware

import (
	"net/http"

	"github.com/nordframe/frontauth"
)

// RequireCritical is RequireLevel pinned to LevelCritical, the level a
// session only reaches shortly after re-authenticating a scheme listed in
// SchemesCriticalTimeSpan.
func RequireCritical() func(http.Handler) http.Handler {
	return RequireLevel(frontauth.LevelCritical, nil)
}
