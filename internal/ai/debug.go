package ai

import "sync/atomic"

// debugLoggingEnabled gates the per-decision debug logs of the AI.
// Simulations run thousands of decisions, so the check stays a single
// atomic load instead of a handler level lookup.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging turns AI decision logging on or off.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether AI decision logging is on.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
