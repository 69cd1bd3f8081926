package recorder

import "strings"

// TraceEnvVar is the environment variable name for enabling trace mode.
const TraceEnvVar = "HLTAS_RECORD_TRACE"

// IsTraceEnabled returns true if trace mode should be enabled.
func IsTraceEnabled(envValue string) bool {
	switch strings.ToLower(envValue) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
