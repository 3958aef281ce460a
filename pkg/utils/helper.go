package utils

import (
	"strings"
	"time"
)

// RemainingSeconds is the whole number of seconds until expiresAt, never negative.
func RemainingSeconds(expiresAt *time.Time, now time.Time) int64 {
	if expiresAt == nil {
		return 0
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// FirstNonBlank returns the first value that is not empty after trimming.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
