// Package validate holds request-field validation helpers for the HTTP layer.
package validate

import (
	"fmt"
	"strconv"
)

const maxQueryLen = 2000

// Query checks a research or follow-up query string.
func Query(v string) error {
	if v == "" {
		return fmt.Errorf("query is required")
	}
	if len(v) > maxQueryLen {
		return fmt.Errorf("query exceeds %d characters", maxQueryLen)
	}
	return nil
}

// SessionID checks a caller-supplied session identifier.
func SessionID(v string) error {
	if v == "" {
		return fmt.Errorf("sessionId is required")
	}
	return nil
}

// NumSources checks an explicit source-count override. Zero means "planner
// decides" and is always valid.
func NumSources(n int) error {
	if n < 0 {
		return fmt.Errorf("numSources must not be negative")
	}
	if n > 10 {
		return fmt.Errorf("numSources exceeds the maximum of 10")
	}
	return nil
}

// Limit parses a history limit query parameter. Empty means unlimited.
func Limit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}
