package properties

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrInvalidFormat is returned when a payload cannot be read as filters
var ErrInvalidFormat = errors.New("invalid property filter format")

// Shape is the structural class of a raw filter payload
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeOldStyle
	ShapeList
	ShapeGroupValue
	ShapeGroupTree
	ShapeLeaf
	ShapeInvalid
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeOldStyle:
		return "old_style"
	case ShapeList:
		return "list"
	case ShapeGroupValue:
		return "group_value"
	case ShapeGroupTree:
		return "group_tree"
	case ShapeLeaf:
		return "leaf"
	default:
		return "invalid"
	}
}

// Classify decides the shape of a raw payload. The order of the checks matters:
// an old-style map is also a one-key map and must be caught before the group checks.
func Classify(input any) Shape {
	if isEmpty(input) {
		return ShapeEmpty
	}
	if m, ok := toMap(input); ok {
		if len(m) == 1 && !isCombinator(m["type"]) {
			return ShapeOldStyle
		}
		if !isCombinator(m["type"]) {
			return ShapeLeaf
		}
		for _, child := range toList(m["values"]) {
			if cm, ok := toMap(child); ok && isCombinator(cm["type"]) {
				return ShapeGroupTree
			}
		}
		return ShapeGroupValue
	}
	if _, ok := asList(input); ok {
		return ShapeList
	}
	return ShapeInvalid
}

// NormalizeGlobal converts any supported filter payload into the canonical tree:
// an outer AND group wrapping one inner group of leaves. Empty input yields nil.
// Payloads that already are group trees keep their structure and are only cleaned.
func NormalizeGlobal(input any) (*FilterGroup, error) {
	switch Classify(input) {
	case ShapeEmpty:
		return nil, nil
	case ShapeOldStyle:
		m, _ := toMap(input)
		return wrap(CombinatorAnd, []any{transformOldStyle(m)}), nil
	case ShapeList:
		list, _ := asList(input)
		return wrap(CombinatorAnd, list), nil
	case ShapeGroupValue:
		m, _ := toMap(input)
		if err := validateGroup(m); err != nil {
			return nil, err
		}
		return cleanGroup(map[string]any{
			"type":   string(CombinatorAnd),
			"values": []any{m},
		}), nil
	case ShapeGroupTree:
		m, _ := toMap(input)
		if err := validateGroup(m); err != nil {
			return nil, err
		}
		return cleanGroup(m), nil
	case ShapeLeaf:
		m, _ := toMap(input)
		return wrap(CombinatorAnd, []any{m}), nil
	default:
		return nil, fmt.Errorf("%w: unsupported payload of type %T", ErrInvalidFormat, input)
	}
}

// NormalizeEntity converts an entity's property payload into a flat list of cleaned
// leaves. Entities cannot hold nested groups, so nesting is rejected.
func NormalizeEntity(input any) ([]PropertyFilter, error) {
	var leaves []any
	switch shape := Classify(input); shape {
	case ShapeEmpty:
		return nil, nil
	case ShapeOldStyle:
		m, _ := toMap(input)
		leaves = []any{transformOldStyle(m)}
	case ShapeList:
		leaves, _ = asList(input)
	case ShapeGroupValue:
		m, _ := toMap(input)
		values, err := groupValues(m)
		if err != nil {
			return nil, err
		}
		leaves = values
	default:
		return nil, fmt.Errorf("%w: entity properties cannot be a %s", ErrInvalidFormat, shape)
	}

	out := make([]PropertyFilter, 0, len(leaves))
	for _, leaf := range leaves {
		if isFalsy(leaf) {
			continue
		}
		m, ok := toMap(leaf)
		if !ok {
			return nil, fmt.Errorf("%w: entity property of type %T", ErrInvalidFormat, leaf)
		}
		if isCombinator(m["type"]) {
			return nil, fmt.Errorf("%w: nested property group in entity", ErrInvalidFormat)
		}
		out = append(out, CleanProperty(m))
	}
	return out, nil
}

// groupValues returns the children of a group map, which must carry a values list
func groupValues(m map[string]any) ([]any, error) {
	raw, ok := m["values"]
	if !ok {
		return nil, fmt.Errorf("%w: %v group has no values", ErrInvalidFormat, m["type"])
	}
	list, ok := asList(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %v group values of type %T", ErrInvalidFormat, m["type"], raw)
	}
	return list, nil
}

// validateGroup walks a group tree and rejects any group without a values list
func validateGroup(m map[string]any) error {
	values, err := groupValues(m)
	if err != nil {
		return err
	}
	for _, child := range values {
		if cm, ok := toMap(child); ok && isCombinator(cm["type"]) {
			if err := validateGroup(cm); err != nil {
				return err
			}
		}
	}
	return nil
}

// transformOldStyle turns {"field__operator": value} into one event leaf
func transformOldStyle(m map[string]any) map[string]any {
	for k, v := range m {
		key, operator, found := strings.Cut(k, "__")
		if !found {
			operator = string(OperatorExact)
		} else if i := strings.Index(operator, "__"); i >= 0 {
			operator = operator[:i]
		}
		return map[string]any{
			"key":      key,
			"value":    v,
			"operator": operator,
			"type":     string(TypeEvent),
		}
	}
	return nil
}

func wrap(inner Combinator, values []any) *FilterGroup {
	return cleanGroup(map[string]any{
		"type": string(CombinatorAnd),
		"values": []any{map[string]any{
			"type":   string(inner),
			"values": values,
		}},
	})
}

func isEmpty(input any) bool {
	if input == nil {
		return true
	}
	switch t := input.(type) {
	case *FilterGroup:
		return t == nil
	case string:
		return t == ""
	}
	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// toMap accepts decoded JSON objects as well as typed nodes
func toMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Node:
		if g, ok := t.(*FilterGroup); ok && g == nil {
			return nil, false
		}
		return t.ToMap(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// asList accepts []any and typed slices such as []map[string]any or []PropertyFilter
func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toList(v any) []any {
	list, _ := asList(v)
	return list
}
