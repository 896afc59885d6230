// Package util holds small helpers shared across the bot's components.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable. It accepts
// true/1/yes/on and false/0/no/off in any case; unset or unrecognized
// values fall back to the default.
func ParseBoolEnv(key string, defaultValue bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "":
		return defaultValue
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: unrecognized boolean value, using default", "key", key, "value", val, "default", defaultValue)
		return defaultValue
	}
}
