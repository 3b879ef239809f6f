package dto

import (
	"encoding/json"
	"time"

	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message,omitempty" example:"team_id is required"`
}

// NormalizeFiltersResponse represents a canonical filter tree
type NormalizeFiltersResponse struct {
	Properties *properties.FilterGroup `json:"properties" swaggertype:"object"`
}

// NormalizeEntityFiltersResponse represents a flat list of cleaned entity filters
type NormalizeEntityFiltersResponse struct {
	Properties []properties.PropertyFilter `json:"properties" swaggertype:"array,object"`
}

// CompareEntitiesResponse represents the relations between two entities
type CompareEntitiesResponse struct {
	Equal        bool `json:"equal" example:"false"`
	ASupersetOfB bool `json:"a_superset_of_b" example:"true"`
	BSupersetOfA bool `json:"b_superset_of_a" example:"false"`
}

// DedupeEntitiesResponse represents series and exclusions with duplicates removed
type DedupeEntitiesResponse struct {
	Series            []entity.Entity `json:"series"`
	Exclusions        []entity.Entity `json:"exclusions"`
	RemovedSeries     int             `json:"removed_series" example:"1"`
	RemovedExclusions int             `json:"removed_exclusions" example:"0"`
}

// PublishQueryResponse represents an accepted query definition
type PublishQueryResponse struct {
	QueryID string `json:"query_id" example:"2f1c9a52-6b1e-5f0e-9a55-1d7c1b8b6a30"`
	Status  string `json:"status" example:"accepted"`
}

// CanonicalQuery is the normalized form of a query definition that is published and stored
type CanonicalQuery struct {
	TeamID     int64                   `json:"team_id"`
	Name       string                  `json:"name"`
	Kind       string                  `json:"kind"`
	Properties *properties.FilterGroup `json:"properties"`
	Series     []entity.Entity         `json:"series"`
	Exclusions []entity.Entity         `json:"exclusions"`
}

// GetQueryResponse represents a stored query definition
type GetQueryResponse struct {
	QueryID     string          `json:"query_id" example:"2f1c9a52-6b1e-5f0e-9a55-1d7c1b8b6a30"`
	TeamID      int64           `json:"team_id" example:"2"`
	Name        string          `json:"name" example:"Signups by plan"`
	Kind        string          `json:"kind" example:"FunnelsQuery"`
	Properties  json.RawMessage `json:"properties" swaggertype:"object"`
	Series      json.RawMessage `json:"series" swaggertype:"array,object"`
	Exclusions  json.RawMessage `json:"exclusions" swaggertype:"array,object"`
	ProcessedAt time.Time       `json:"processed_at"`
}
