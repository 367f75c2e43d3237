// Package environment reads configuration overrides from process
// environment variables.
//
// Hanabi resolves its configuration in layers: built-in defaults, then the
// YAML file, then the environment. These helpers implement the last layer.
// Each takes the value resolved so far and returns it unchanged when the
// variable is unset, empty, or unparseable, so a stray value in the
// environment can never zero out a working setting.
package environment

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StringOr returns the named variable's value, or current when the variable
// is unset or empty.
func StringOr(name, current string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return current
}

// BoolOr parses the named variable with strconv.ParseBool ("1", "true",
// "f", ...), keeping current when it is unset or unparseable.
func BoolOr(name string, current bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return current
	}
	return b
}

// IntOr parses the named variable as a decimal integer, keeping current
// when it is unset or unparseable.
func IntOr(name string, current int) int {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return current
	}
	return n
}

// DurationOr parses the named variable as a time.Duration ("30s", "5m"),
// keeping current when it is unset or unparseable.
func DurationOr(name string, current time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return current
	}
	return d
}

// StringSliceOr parses the named variable as a comma-separated list,
// trimming whitespace and dropping empty elements. Keeps current when the
// variable is unset or contains no usable elements.
func StringSliceOr(name string, current []string) []string {
	v := os.Getenv(name)
	if v == "" {
		return current
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return current
	}
	return out
}
