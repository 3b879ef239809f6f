package dto

import (
	"github.com/BarkinBalci/insight-query-service/internal/entity"
)

// NormalizeFiltersRequest represents a filter normalization request
type NormalizeFiltersRequest struct {
	Properties interface{} `json:"properties" swaggertype:"object" example:"plan__icontains:pro"`
}

// CompareEntitiesRequest represents an entity comparison request
type CompareEntitiesRequest struct {
	A entity.Entity `json:"a"`
	B entity.Entity `json:"b"`
}

// DedupeEntitiesRequest represents a request to collapse duplicate series and exclusions
type DedupeEntitiesRequest struct {
	Series     []entity.Entity `json:"series"`
	Exclusions []entity.Entity `json:"exclusions"`
}

// PublishQueryRequest represents a query definition to normalize and store
type PublishQueryRequest struct {
	TeamID     int64           `json:"team_id" binding:"required" example:"2"`
	Name       string          `json:"name" example:"Signups by plan"`
	Kind       string          `json:"kind" binding:"required,oneof=TrendsQuery FunnelsQuery RetentionQuery StickinessQuery LifecycleQuery PathsQuery" example:"FunnelsQuery"`
	Properties interface{}     `json:"properties" swaggertype:"object"`
	Series     []entity.Entity `json:"series" binding:"required,min=1,max=100"`
	Exclusions []entity.Entity `json:"exclusions"`
}

// GetQueryRequest represents a stored query lookup
type GetQueryRequest struct {
	QueryID string `uri:"id" binding:"required,uuid" example:"2f1c9a52-6b1e-5f0e-9a55-1d7c1b8b6a30"`
}
