package frontauth

import "errors"

var (
	// ErrEngineNotReady names an engine that Builder.Build has not wired.
	// No function in this package returns it.
	ErrEngineNotReady = errors.New("frontauth: engine not initialized")
	// ErrNoBackend is returned by UnifiedLogin-producing calls when no
	// login-service contract was configured for the requested scheme.
	ErrNoBackend = errors.New("frontauth: no login backend configured for scheme")
	// ErrInvalidConfig is returned by Builder.Build when Config.Validate
	// fails or when no login service is registered.
	ErrInvalidConfig = errors.New("frontauth: invalid configuration")
)
