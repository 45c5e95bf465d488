package toon

import (
	"strconv"
	"strings"
)

// maxNumberLengthDefault is the default cap on how many characters a
// single numeric literal may span.
const maxNumberLengthDefault = 1000

// FormatIntegral renders i in TOON's canonical integer form: no leading
// zeros (other than the bare literal "0"), and no "-0".
func FormatIntegral(i int64) string {
	if i == 0 {
		return "0"
	}
	return strconv.FormatInt(i, 10)
}

// FormatFractional renders f in TOON's canonical fractional form: fixed
// notation (never exponent notation), at least one digit after the
// decimal point, and no trailing zeros beyond the one required digit.
// strconv.FormatFloat with 'f' and precision -1 already produces the
// shortest round-trip decimal representation, so canonicalization here is
// limited to ensuring a decimal point is present.
func FormatFractional(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParsedNumber is the result of interpreting a NUMBER token's raw text.
type ParsedNumber struct {
	IsFractional bool
	Int          int64
	Float        float64
}

// ParseNumber interprets the raw text of a NUMBER token. The lexer only
// ever produces text matching the numeric grammar, so the only failure
// mode here is integer overflow, which falls back to float64.
func ParseNumber(raw string) ParsedNumber {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return ParsedNumber{Int: i}
		}
	}
	f, _ := strconv.ParseFloat(raw, 64)
	return ParsedNumber{IsFractional: true, Float: f}
}
