package utils

import "strings"

// FormatAmount converts a minor-unit integer string (wei, sompi, token base
// units) into a display decimal string, dividing by 10^decimals using pure
// string arithmetic. Floating point is never involved, so amounts near or
// beyond 2^53 keep every digit.
//
// Malformed or negative input is clamped to "0": explorer data is untrusted
// but assumed non-adversarial, and a zero amount is the safest fallback.
func FormatAmount(rawInteger string, decimals int) string {
	raw := strings.TrimSpace(rawInteger)
	if !isDigits(raw) {
		return "0"
	}
	raw = strings.TrimLeft(raw, "0")
	if raw == "" {
		return "0"
	}
	if decimals <= 0 {
		return raw
	}

	// Left-pad until the string is longer than the decimals count, then
	// split into integer and fractional parts at len-decimals.
	for len(raw) <= decimals {
		raw = "0" + raw
	}
	split := len(raw) - decimals
	intPart := raw[:split]
	fracPart := strings.TrimRight(raw[split:], "0")

	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
