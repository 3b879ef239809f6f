package properties

import (
	json "github.com/goccy/go-json"
)

// FilterType is the tag of a leaf property filter
type FilterType string

const (
	TypeEvent                       FilterType = "event"
	TypePerson                      FilterType = "person"
	TypeCohort                      FilterType = "cohort"
	TypeHogQL                       FilterType = "hogql"
	TypeFeature                     FilterType = "feature"
	TypeElement                     FilterType = "element"
	TypeSession                     FilterType = "session"
	TypeGroup                       FilterType = "group"
	TypeRecording                   FilterType = "recording"
	TypeLogEntry                    FilterType = "log_entry"
	TypeDataWarehouse               FilterType = "data_warehouse"
	TypeDataWarehousePersonProperty FilterType = "data_warehouse_person_property"
	TypeErrorTrackingIssue          FilterType = "error_tracking_issue"

	// legacy aliases, renamed by CleanProperty
	typeEventsLegacy        FilterType = "events"
	typePrecalculatedCohort FilterType = "precalculated-cohort"
	typeStaticCohort        FilterType = "static-cohort"
)

// Known reports whether the comparator and cleaner have a dedicated rule for the type.
// Unknown types are still passed through untouched.
func (t FilterType) Known() bool {
	switch t {
	case TypeEvent, TypePerson, TypeCohort, TypeHogQL, TypeFeature, TypeElement,
		TypeSession, TypeGroup, TypeRecording, TypeLogEntry, TypeDataWarehouse,
		TypeDataWarehousePersonProperty, TypeErrorTrackingIssue:
		return true
	default:
		return false
	}
}

// HasOperator reports whether filters of this type carry an operator
func (t FilterType) HasOperator() bool {
	switch t {
	case TypeCohort, TypeHogQL:
		return false
	default:
		return true
	}
}

// Operator is the comparison applied by a leaf filter
type Operator string

const (
	OperatorExact        Operator = "exact"
	OperatorIsNot        Operator = "is_not"
	OperatorIContains    Operator = "icontains"
	OperatorNotIContains Operator = "not_icontains"
	OperatorRegex        Operator = "regex"
	OperatorNotRegex     Operator = "not_regex"
	OperatorGT           Operator = "gt"
	OperatorGTE          Operator = "gte"
	OperatorLT           Operator = "lt"
	OperatorLTE          Operator = "lte"
	OperatorIsSet        Operator = "is_set"
	OperatorIsNotSet     Operator = "is_not_set"
)

// Combinator joins the children of a FilterGroup
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

func isCombinator(v any) bool {
	s, ok := v.(string)
	return ok && (Combinator(s) == CombinatorAnd || Combinator(s) == CombinatorOr)
}

// Node is either a *FilterGroup or a PropertyFilter
type Node interface {
	isNode()
	// ToMap returns a fresh map representation accepted by the normalizer
	ToMap() map[string]any
}

// PropertyFilter is a single cleaned leaf condition.
// Empty Key/Operator and a nil Value mean the field is absent.
type PropertyFilter struct {
	Type     FilterType
	Key      string
	Operator Operator
	Value    any
	// Extra holds fields the cleaner does not interpret, e.g. label or group_type_index
	Extra map[string]any
}

func (PropertyFilter) isNode() {}

// ToMap returns the leaf as a map with absent fields omitted.
// A typed leaf always carries its key, even when it is empty.
func (p PropertyFilter) ToMap() map[string]any {
	m := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		m[k] = copyValue(v)
	}
	if p.Type != "" {
		m["type"] = string(p.Type)
	}
	if p.Key != "" || p.Type != "" {
		m["key"] = p.Key
	}
	if p.Operator != "" {
		m["operator"] = string(p.Operator)
	}
	if p.Value != nil {
		m["value"] = copyValue(p.Value)
	}
	return m
}

// Canonical runs the leaf through CleanProperty
func (p PropertyFilter) Canonical() PropertyFilter {
	return CleanProperty(p.ToMap())
}

// MarshalJSON emits only the fields that are present
func (p PropertyFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// UnmarshalJSON decodes a leaf and cleans it
func (p *PropertyFilter) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = CleanProperty(raw)
	return nil
}

// FilterGroup is an AND/OR node of the filter tree
type FilterGroup struct {
	Type   Combinator
	Values []Node
}

func (*FilterGroup) isNode() {}

// ToMap returns the group in its wire shape {"type": ..., "values": [...]}
func (g *FilterGroup) ToMap() map[string]any {
	values := make([]any, 0, len(g.Values))
	for _, v := range g.Values {
		values = append(values, v.ToMap())
	}
	return map[string]any{
		"type":   string(g.Type),
		"values": values,
	}
}

// Leaves returns every leaf in depth-first order
func (g *FilterGroup) Leaves() []PropertyFilter {
	var out []PropertyFilter
	for _, v := range g.Values {
		switch n := v.(type) {
		case *FilterGroup:
			out = append(out, n.Leaves()...)
		case PropertyFilter:
			out = append(out, n)
		}
	}
	return out
}

// MarshalJSON emits the wire shape
func (g *FilterGroup) MarshalJSON() ([]byte, error) {
	values := make([]json.RawMessage, 0, len(g.Values))
	for _, v := range g.Values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		values = append(values, b)
	}
	return json.Marshal(struct {
		Type   Combinator        `json:"type"`
		Values []json.RawMessage `json:"values"`
	}{g.Type, values})
}

// UnmarshalJSON decodes a group tree without normalizing its shape
func (g *FilterGroup) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !isCombinator(raw["type"]) {
		return ErrInvalidFormat
	}
	if err := validateGroup(raw); err != nil {
		return err
	}
	*g = *cleanGroup(raw)
	return nil
}

// copyValue deep-copies JSON-like values so outputs never alias inputs
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = copyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	default:
		return v
	}
}
