package transform

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var errMissingPart = errors.New("separator not found")

var (
	errNotDecimal = errors.New("not a finite decimal number")
	errOutOfRange = errors.New("value out of range")
)

// parseFloat accepts plain decimal literals only. strconv also takes NaN,
// Inf, exponents and hex floats, none of which is a measurement.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !isDecimalLiteral(s) {
		return 0, fmt.Errorf("%w: %q", errNotDecimal, s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %w", err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", errNotDecimal, s)
	}
	return f, nil
}

// isDecimalLiteral reports whether s is an optionally signed run of digits
// with at most one decimal point. Exponents are not accepted.
func isDecimalLiteral(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" && frac == "" {
		return false
	}
	return strings.Trim(intPart, "0123456789") == "" && strings.Trim(frac, "0123456789") == ""
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %w", err)
	}
	return n, nil
}

func fixed(f float64, decimals int) string {
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// truncInt renders f without its fractional part.
func truncInt(f float64) string {
	return strconv.FormatInt(int64(math.Trunc(f)), 10)
}

// compact renders integral floats without a fraction and the rest in their
// shortest form.
func compact(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// part returns the trimmed i-th piece of s split on sep.
func part(s, sep string, i int) (string, error) {
	parts := strings.Split(s, sep)
	if i < 0 || i >= len(parts) {
		return "", fmt.Errorf("%w: %q has no part %d", errMissingPart, sep, i)
	}
	return strings.TrimSpace(parts[i]), nil
}

// trimmedParts splits s on sep and trims every piece.
func trimmedParts(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// lastPart is the upper bound of a range like "1520 - 1535".
func lastPart(s, sep string) string {
	parts := strings.Split(s, sep)
	return strings.TrimSpace(parts[len(parts)-1])
}

// maxOfPair returns the larger of "a<sep>b", or the single number when sep
// does not occur.
func maxOfPair(s, sep string) (int, error) {
	if !strings.Contains(s, sep) {
		return parseInt(s)
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, fmt.Errorf("want a pair separated by %q, got %d parts", sep, len(parts))
	}
	a, err := parseInt(parts[0])
	if err != nil {
		return 0, err
	}
	b, err := parseInt(parts[1])
	if err != nil {
		return 0, err
	}
	return max(a, b), nil
}

// intPair parses "a<sep>b" into two integers.
func intPair(s, sep string) ([2]int, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("want a pair separated by %q, got %d parts", sep, len(parts))
	}
	var out [2]int
	for i, p := range parts {
		n, err := parseInt(p)
		if err != nil {
			return [2]int{}, err
		}
		out[i] = n
	}
	return out, nil
}

// significantDigits counts the digits of a decimal literal from its first
// non-zero digit on. Trailing zeros count: "5" and "0.005" have one digit,
// "10" and "11" have two, "0.0050" has two.
func significantDigits(s string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	return len(strings.TrimLeft(digits, "0"))
}

var litres = regexp.MustCompile(`([\d,]+)\s*liter`)

// parseLitres reads consumption values such as "5,6 liter/100km" or "7.4".
func parseLitres(s string) (float64, error) {
	if strings.Contains(s, "liter") {
		if m := litres.FindStringSubmatch(s); m != nil {
			return parseFloat(strings.ReplaceAll(m[1], ",", "."))
		}
	}
	return parseFloat(s)
}

// stripGramsPerKm removes the " g/km" unit.
func stripGramsPerKm(s string) string {
	return strings.ReplaceAll(s, " g/km", "")
}
