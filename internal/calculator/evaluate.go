package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Compute applies op to the textual operands and returns the result as text.
// If either operand does not start with a number the result is "". Division
// by zero is not an error: it yields "Infinity", "-Infinity" or "NaN".
func Compute(previous, current string, op Operator) string {
	result, ok := ComputeFloat(previous, current, op)
	if !ok {
		return ""
	}
	return FormatNumber(result)
}

// ComputeFloat is Compute before formatting. ok is false when an operand
// does not parse or op is not an arithmetic operator.
func ComputeFloat(previous, current string, op Operator) (result float64, ok bool) {
	a, ok := parseOperand(previous)
	if !ok {
		return 0, false
	}
	b, ok := parseOperand(current)
	if !ok {
		return 0, false
	}

	switch op {
	case OpAdd:
		return a + b, true
	case OpSubtract:
		return a - b, true
	case OpMultiply:
		return a * b, true
	case OpDivide:
		return a / b, true
	}
	return 0, false
}

// parseOperand reads the longest decimal prefix of s after leading
// whitespace, so "1abc" is 1 and "0x10" is 0. Hex floats, "inf" and "NaN"
// are not numbers. A well-formed literal beyond float64 range is ±Inf.
func parseOperand(s string) (float64, bool) {
	prefix := decimalPrefix(strings.TrimLeftFunc(s, unicode.IsSpace))
	if prefix == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// decimalPrefix returns the longest prefix of s of the form
// [+-](Infinity | digits[.digits] | .digits)[(e|E)[+-]digits], or "".
func decimalPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			end = j
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// FormatNumber renders f in shortest round-trip form: plain decimal for
// ordinary magnitudes, exponent form below 1e-6 and from 1e21 upward.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Also covers negative zero.
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimExponent turns "1e-07" into "1e-7".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}

	mantissa, sign, digits := s[:i], s[i+1], strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
