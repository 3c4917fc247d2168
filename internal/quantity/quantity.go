// Package quantity parses user-entered amounts. Inputs come from form
// fields and voice confirmations, so "2", "1.5", and "2/3" are all valid.
package quantity

import (
	"strconv"
	"strings"
)

// Parse converts a numeric or fractional string to a float. The second
// return value is false when the input is not a number; absence of a
// value is a sentinel, not an error. Callers enforce their own sign
// rules (purchases need > 0, minimum edits allow 0).
func Parse(input string) (float64, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false
	}

	if strings.Contains(trimmed, "/") {
		parts := strings.Split(trimmed, "/")
		if len(parts) != 2 {
			return 0, false
		}
		numerator, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return 0, false
		}
		denominator, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || denominator == 0 {
			return 0, false
		}
		return numerator / denominator, true
	}

	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
