package planet

import (
	"encoding/json"
	"math"
	"strings"

	"golang.org/x/exp/constraints"
)

// maxSafeInteger bounds integral fields so they survive a round trip through
// JSON consumers that store numbers as float64.
const maxSafeInteger = 1<<53 - 1

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// number extracts a finite float from a decoded JSON value.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// integer extracts a whole number within ±maxSafeInteger.
func integer(v any) (int64, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxSafeInteger {
		return 0, false
	}
	return int64(f), true
}

// numberRule coerces one leaf field.
type numberRule func(v any) float64

// clampRule clamps numbers into [lo, hi]; anything else becomes def.
func clampRule(lo, hi, def float64) numberRule {
	return func(v any) float64 {
		f, ok := number(v)
		if !ok {
			return def
		}
		return clamp(f, lo, hi)
	}
}

// atLeastRule clamps numbers to >= lo; anything else becomes def.
func atLeastRule(lo, def float64) numberRule {
	return clampRule(lo, math.MaxFloat64, def)
}

// finiteRule accepts any finite number; anything else becomes def.
func finiteRule(def float64) numberRule {
	return clampRule(-math.MaxFloat64, math.MaxFloat64, def)
}

var (
	unitRule      = clampRule(0, 1, 0)
	percentRule   = clampRule(0, 100, 0)
	latitudeRule  = clampRule(-90, 90, 0)
	longitudeRule = clampRule(-180, 180, 0)
	lengthRule    = atLeastRule(0, 0)
	driftRule     = finiteRule(0)
	heightRule    = finiteRule(0)
)

// stringOr returns v when it is a string, def otherwise.
func stringOr(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// nonEmptyStringOr returns v when it is a string with visible content.
func nonEmptyStringOr(v any, def string) string {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

// oneOf returns v when it names a member of allowed.
func oneOf[T ~string](v any, allowed []T, def T) T {
	s, ok := v.(string)
	if !ok {
		return def
	}
	for _, a := range allowed {
		if string(a) == s {
			return a
		}
	}
	return def
}

// gridDimension accepts whole numbers in [1, MaxGridDimension].
func gridDimension(v any, def int) int {
	n, ok := integer(v)
	if !ok || n < 1 || n > MaxGridDimension {
		return def
	}
	return int(n)
}

func object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}
