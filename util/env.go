package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// IsTruthy reports whether an environment-style flag value means "on".
func IsTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func OrElse(a, b string) string {
	if a == "" {
		return b
	}
	return a
}

func GetOrDefault(name, defaultValue string) string {
	return OrElse(os.Getenv(name), defaultValue)
}

// GetIntOrDefault parses an integer env var; unparseable or non-positive values yield defaultValue.
func GetIntOrDefault(name string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func GetMillisOrDefault(name string, defaultValue time.Duration) time.Duration {
	ms := GetIntOrDefault(name, 0)
	if ms == 0 {
		return defaultValue
	}
	return time.Duration(ms) * time.Millisecond
}
