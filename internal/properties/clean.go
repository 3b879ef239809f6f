package properties

import (
	"fmt"
	"reflect"
)

// CleanProperty normalizes a single leaf filter.
//
// Legacy type names are renamed, a legacy "values" field becomes "value", cohort
// filters get the key "id", operators are defaulted to exact or stripped depending
// on the type, nulls are pruned from list values and null fields are dropped.
// The input map is not modified.
func CleanProperty(raw map[string]any) PropertyFilter {
	var p PropertyFilter

	for k, v := range raw {
		switch k {
		case "type", "key", "operator", "value", "values":
		default:
			if v != nil {
				if p.Extra == nil {
					p.Extra = make(map[string]any)
				}
				p.Extra[k] = copyValue(v)
			}
		}
	}

	switch t := FilterType(stringField(raw, "type")); t {
	case typeEventsLegacy:
		p.Type = TypeEvent
	case typePrecalculatedCohort, typeStaticCohort:
		p.Type = TypeCohort
	default:
		p.Type = t
	}

	// "values" is the legacy name and only fills an absent "value"
	value := raw["value"]
	if value == nil {
		value = raw["values"]
	}
	p.Value = pruneNulls(value)

	p.Key = stringField(raw, "key")
	if p.Type == TypeCohort {
		p.Key = "id"
	}

	if p.Type.HasOperator() {
		p.Operator = Operator(stringField(raw, "operator"))
		if p.Operator == "" {
			p.Operator = OperatorExact
		}
	}

	return p
}

// stringField reads a string-ish field. Non-string scalars are formatted so that
// numeric keys survive a JSON round trip.
func stringField(raw map[string]any, name string) string {
	switch v := raw[name].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// pruneNulls returns a copy of v with null entries removed when v is a list
func pruneNulls(v any) any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		out := make([]any, 0, len(list))
		for _, e := range list {
			if e != nil {
				out = append(out, copyValue(e))
			}
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return copyValue(v)
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		e := rv.Index(i)
		if (e.Kind() == reflect.Pointer || e.Kind() == reflect.Interface) && e.IsNil() {
			continue
		}
		out = append(out, e.Interface())
	}
	return out
}

// cleanGroup rebuilds an AND/OR node, recursing into nested groups
func cleanGroup(raw map[string]any) *FilterGroup {
	return &FilterGroup{
		Type:   Combinator(raw["type"].(string)),
		Values: cleanGroupValues(raw["values"]),
	}
}

func cleanGroupValues(values any) []Node {
	list := toList(values)
	out := make([]Node, 0, len(list))
	for _, v := range list {
		if isFalsy(v) {
			continue
		}
		m, ok := toMap(v)
		if !ok {
			// scalars cannot be filters
			continue
		}
		if isCombinator(m["type"]) {
			out = append(out, cleanGroup(m))
			continue
		}
		out = append(out, CleanProperty(m))
	}
	return out
}

// isFalsy matches the empty values that legacy payloads use as placeholders
func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case float64:
		return t == 0
	case int:
		return t == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
