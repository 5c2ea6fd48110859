// Package filter parses and evaluates metadata filters for vector search.
//
// A filter arrives as user-supplied text. Parse attempts to read it as a
// JSON object mapping field names to constraints; almost-JSON input is
// salvaged with jsonrepair before giving up. Input that cannot be read as
// a structured object is passed through verbatim as a raw filter for the
// store to interpret. Parse never fails: every input degrades to either a
// structured filter, a raw filter, or no filter at all.
package filter

import (
	"encoding/json"

	jsonrepair "github.com/kaptinlin/jsonrepair"
)

// Filter is a metadata predicate for a similarity search. Exactly one of
// Fields and Raw is set: Fields for a structured field→constraint mapping,
// Raw for opaque text the store interprets itself.
type Filter struct {
	Fields map[string]any
	Raw    string
}

// IsRaw reports whether the filter is an opaque string passthrough.
func (f *Filter) IsRaw() bool {
	return f != nil && f.Fields == nil
}

// Parse interprets raw filter text. It returns nil for empty input and for
// input that parses to an empty object, so an empty filter never
// over-constrains a search. Malformed input is repaired where possible and
// otherwise returned unchanged as a raw filter.
func Parse(raw string) *Filter {
	if raw == "" {
		return nil
	}

	if fields, ok := parseObject(raw); ok {
		if len(fields) == 0 {
			return nil
		}
		return &Filter{Fields: fields}
	}

	if repaired, err := jsonrepair.JSONRepair(raw); err == nil {
		if fields, ok := parseObject(repaired); ok {
			if len(fields) == 0 {
				return nil
			}
			return &Filter{Fields: fields}
		}
	}

	return &Filter{Raw: raw}
}

// parseObject unmarshals s into a JSON object. A valid JSON document that
// is not an object (array, string, number) does not count: a structured
// filter is a mapping of fields to constraints, nothing else.
func parseObject(s string) (map[string]any, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, false
	}
	return fields, true
}
