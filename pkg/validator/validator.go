package validator

import (
	"strconv"
	"strings"
)

// Valid event kinds, mirrored from the domain's closed set. Kept as plain
// strings so this package stays dependency-free.
var eventKinds = map[string]bool{
	"view":     true,
	"download": true,
	"contact":  true,
}

// ValidateEventKind checks that a kind string belongs to the closed set
func ValidateEventKind(kind string) error {
	if !eventKinds[strings.TrimSpace(kind)] {
		return ErrUnknownEventKind
	}
	return nil
}

// ParseLimit parses a recent-events limit query value. An empty value
// falls back to def; values above max are clamped down; zero and negative
// values pass through unchanged (the store treats them as "return
// nothing" rather than an error).
func ParseLimit(raw string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrLimitNotANumber
	}

	if limit > max {
		return max, nil
	}
	return limit, nil
}
