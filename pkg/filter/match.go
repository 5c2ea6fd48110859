package filter

import "encoding/json"

// Matches evaluates a structured filter against document metadata. All
// field constraints must hold (implicit AND). A scalar constraint is an
// equality test; a map constraint holds comparison operators ($eq, $ne,
// $gt, $gte, $lt, $lte, $in) that must all hold.
//
// Raw filters cannot be evaluated here; callers that only support
// structured filters should reject raw filters before matching.
func (f *Filter) Matches(metadata map[string]any) bool {
	if f == nil || f.Fields == nil {
		return true
	}
	for key, constraint := range f.Fields {
		value, ok := metadata[key]
		if !ok {
			return false
		}
		if !matchesConstraint(value, constraint) {
			return false
		}
	}
	return true
}

func matchesConstraint(value, constraint any) bool {
	ops, isOps := constraint.(map[string]any)
	if !isOps {
		return equal(value, constraint)
	}

	for op, operand := range ops {
		switch op {
		case "$eq":
			if !equal(value, operand) {
				return false
			}
		case "$ne":
			if equal(value, operand) {
				return false
			}
		case "$in":
			if !containedIn(value, operand) {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !compareNumeric(op, value, operand) {
				return false
			}
		default:
			// Unknown operator: treat the whole map as a literal value.
			return equal(value, constraint)
		}
	}
	return true
}

func containedIn(value, operand any) bool {
	options, ok := operand.([]any)
	if !ok {
		return false
	}
	for _, option := range options {
		if equal(value, option) {
			return true
		}
	}
	return false
}

func compareNumeric(op string, value, operand any) bool {
	v, okV := toFloat(value)
	o, okO := toFloat(operand)
	if !okV || !okO {
		return false
	}
	switch op {
	case "$gt":
		return v > o
	case "$gte":
		return v >= o
	case "$lt":
		return v < o
	case "$lte":
		return v <= o
	}
	return false
}

// equal compares two metadata values. Numbers compare by value regardless
// of concrete type, since metadata decoded from JSON carries float64 while
// in-process metadata may hold ints.
func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
