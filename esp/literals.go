package esp

import (
	"errors"
	"strconv"
)

// parseIntPrefix parses the longest leading integer in s: an optional sign
// followed by decimal digits. Trailing text is ignored, so "12abc" and "3.5"
// yield 12 and 3.
func parseIntPrefix(s string) (int64, int, error) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return 0, 0, errors.New("expected digits")
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, 0, errors.New("integer out of range")
	}
	return n, end, nil
}

// parseFloatPrefix parses the longest leading decimal float in s, accepting
// an optional sign, a mantissa with at most one '.', and an optional exponent.
func parseFloatPrefix(s string) (float64, int, error) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	mantissaDigits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		mantissaDigits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			mantissaDigits++
		}
	}
	if mantissaDigits == 0 {
		return 0, 0, errors.New("expected digits")
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '-' || s[exp] == '+') {
			exp++
		}
		expDigits := exp
		for exp < len(s) && isDigit(s[exp]) {
			exp++
		}
		if exp > expDigits {
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, 0, errors.New("float out of range")
	}
	return f, end, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHorizontalSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
