// Package timespec parses textual stream positions into sample counts.
//
// An expression is either a wide sample count with an `s` suffix
// ("8000s") or a time value in [[HH:]MM:]SS form where the seconds may
// carry a fraction ("1:30", "0:05.5", "10.25"). Time values need a
// sample rate to resolve; sample counts do not.
package timespec

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/dudk/sfx"
)

var (
	// ErrEmpty is returned for an empty expression.
	ErrEmpty = errors.New("empty time specification")
	// ErrSyntax is returned for an expression that is neither a
	// sample count nor a time value.
	ErrSyntax = errors.New("malformed time specification")
)

// Parse resolves expr to a wide sample count at the given rate. The
// result is always non-negative. A zero rate performs a syntax-only
// parse: time values resolve to zero samples.
func Parse(expr string, rate sfx.Frequency) (sfx.Wide, error) {
	if expr == "" {
		return 0, ErrEmpty
	}
	if strings.HasSuffix(expr, "s") {
		return parseSamples(strings.TrimSuffix(expr, "s"))
	}
	return parseTime(expr, rate)
}

// Check verifies the syntax of expr without a sample rate.
func Check(expr string) error {
	_, err := Parse(expr, 0)
	return err
}

func parseSamples(s string) (sfx.Wide, error) {
	v, err := parseNonNegative(s)
	if err != nil {
		return 0, err
	}
	return sfx.Wide(math.Round(v)), nil
}

func parseTime(s string, rate sfx.Frequency) (sfx.Wide, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, ErrSyntax
	}
	var seconds float64
	for i, part := range parts {
		// only the trailing seconds field may carry a fraction
		if i < len(parts)-1 && strings.ContainsAny(part, ".,") {
			return 0, ErrSyntax
		}
		v, err := parseNonNegative(part)
		if err != nil {
			return 0, err
		}
		seconds = seconds*60 + v
	}
	return sfx.Wide(math.Round(seconds * float64(rate))), nil
}

func parseNonNegative(s string) (float64, error) {
	if s == "" {
		return 0, ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrSyntax
	}
	return v, nil
}
