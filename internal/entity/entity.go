package entity

import (
	json "github.com/goccy/go-json"

	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

// Kind is the node type of a query entity
type Kind string

const (
	KindEvents           Kind = "EventsNode"
	KindActions          Kind = "ActionsNode"
	KindExclusionEvents  Kind = "FunnelExclusionEventsNode"
	KindExclusionActions Kind = "FunnelExclusionActionsNode"
)

type family int

const (
	familyUnknown family = iota
	familyEvents
	familyActions
)

func (k Kind) family() family {
	switch k {
	case KindEvents, KindExclusionEvents:
		return familyEvents
	case KindActions, KindExclusionActions:
		return familyActions
	default:
		return familyUnknown
	}
}

// IsExclusion reports whether the kind is a funnel exclusion node
func (k Kind) IsExclusion() bool {
	return k == KindExclusionEvents || k == KindExclusionActions
}

// Entity is an event or action based building block of a query.
// Math, name and funnel step fields are carried but never compared.
type Entity struct {
	Kind            Kind                        `json:"kind"`
	ID              int64                       `json:"id,omitempty"`
	Event           string                      `json:"event,omitempty"`
	Name            string                      `json:"name,omitempty"`
	CustomName      string                      `json:"custom_name,omitempty"`
	Math            string                      `json:"math,omitempty"`
	MathProperty    string                      `json:"math_property,omitempty"`
	Properties      []properties.PropertyFilter `json:"properties,omitempty"`
	FixedProperties []properties.PropertyFilter `json:"fixedProperties,omitempty"`
	FunnelFromStep  *int                        `json:"funnelFromStep,omitempty"`
	FunnelToStep    *int                        `json:"funnelToStep,omitempty"`
}

type entityAlias Entity

// UnmarshalJSON accepts properties in any shape properties.NormalizeEntity understands
func (e *Entity) UnmarshalJSON(data []byte) error {
	var aux struct {
		entityAlias
		Properties      json.RawMessage `json:"properties"`
		FixedProperties json.RawMessage `json:"fixedProperties"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	props, err := properties.ParseEntity(aux.Properties)
	if err != nil {
		return err
	}
	fixed, err := properties.ParseEntity(aux.FixedProperties)
	if err != nil {
		return err
	}

	*e = Entity(aux.entityAlias)
	e.Properties = props
	e.FixedProperties = fixed
	return nil
}
