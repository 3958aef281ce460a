package notification

import (
	"strings"
)

// defaultCountryCode is prefixed to bare ten digit numbers.
const defaultCountryCode = "+91"

// NormalizePhoneNumber returns an E.164 style number or "" when the input
// cannot be one. Spaces, dashes and parentheses are ignored.
func NormalizePhoneNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	plus := strings.HasPrefix(raw, "+")
	var digits strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+':
		default:
			return ""
		}
	}

	d := digits.String()
	switch {
	case len(d) == 10 && !plus:
		return defaultCountryCode + d
	case len(d) >= 10 && len(d) <= 15:
		return "+" + d
	default:
		return ""
	}
}
