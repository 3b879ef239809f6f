package consumer

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

// queryMessage is the body published by the API service
type queryMessage struct {
	QueryID    string          `json:"query_id"`
	TeamID     int64           `json:"team_id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Properties json.RawMessage `json:"properties"`
	Series     []entity.Entity `json:"series"`
	Exclusions []entity.Entity `json:"exclusions"`
}

// JSONQueryParser implements MessageParser for JSON-formatted query definition messages.
// Filters are normalized again on the way in, so rows written by older producers are canonical too.
type JSONQueryParser struct{}

// NewJSONQueryParser creates a new JSON query parser
func NewJSONQueryParser() *JSONQueryParser {
	return &JSONQueryParser{}
}

// Parse parses a JSON message body into a QueryDefinition
func (p *JSONQueryParser) Parse(body []byte) (*domain.QueryDefinition, error) {
	var msg queryMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	if msg.QueryID == "" {
		return nil, errors.New("message has no query_id")
	}

	group, err := properties.ParseGlobal(msg.Properties)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize properties: %w", err)
	}

	propertiesJSON := "null"
	if group != nil {
		b, err := json.Marshal(group)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal properties: %w", err)
		}
		propertiesJSON = string(b)
	}

	seriesJSON, err := marshalEntities(msg.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal series: %w", err)
	}

	exclusionsJSON, err := marshalEntities(msg.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exclusions: %w", err)
	}

	now := time.Now()
	return &domain.QueryDefinition{
		QueryID:     msg.QueryID,
		TeamID:      msg.TeamID,
		Name:        msg.Name,
		Kind:        msg.Kind,
		Properties:  propertiesJSON,
		Series:      seriesJSON,
		Exclusions:  exclusionsJSON,
		ProcessedAt: now,
		Version:     uint64(now.UnixNano()),
	}, nil
}

func marshalEntities(entities []entity.Entity) (string, error) {
	if len(entities) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(entities)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
