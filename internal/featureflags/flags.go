// Package featureflags reads kill switches from the environment so background
// behavior (like the cache warmer) can be toggled without a redeploy.
package featureflags

import (
	"os"
	"strings"
)

const envPrefix = "FLAG_"

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive). Unset flags are off.
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv(envPrefix + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
