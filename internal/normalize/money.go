package normalize

import (
	"math"
	"strconv"
	"strings"
)

// DefaultReviewThreshold is the amount above which a record is flagged for
// manual review.
const DefaultReviewThreshold = 100000.0

// Amount parses a currency string into a non-negative value. Every character
// other than digits, '.' and ',' is dropped first, so signs and currency
// symbols disappear. "1.234,56" and "1234,56" use ',' as the decimal point;
// "1,234.56" uses it for grouping. Unparseable input yields 0.
func Amount(input string) float64 {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	dot := strings.Index(s, ".")
	comma := strings.Index(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && dot < comma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", ".")
	}

	v := leadingFloat(s)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Abs(v)
}

// Money formats Amount(input) with two decimals and reports whether it is
// above DefaultReviewThreshold.
func Money(input string) (string, bool) {
	v := Amount(input)
	return FormatAmount(v), v > DefaultReviewThreshold
}

// FormatAmount renders v with exactly two fractional digits.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// leadingFloat parses the longest "digits[.digits]" prefix, so "1.234.567"
// reads as 1.234.
func leadingFloat(s string) float64 {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		end++
	}
	prefix := strings.TrimSuffix(s[:end], ".")
	if prefix == "" || prefix == "." {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return v
}
