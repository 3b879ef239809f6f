package service

import (
	"context"

	"github.com/BarkinBalci/insight-query-service/internal/dto"
)

// QueryServicer defines the interface for query definition operations
type QueryServicer interface {
	NormalizeFilters(req *dto.NormalizeFiltersRequest) (*dto.NormalizeFiltersResponse, error)
	NormalizeEntityFilters(req *dto.NormalizeFiltersRequest) (*dto.NormalizeEntityFiltersResponse, error)
	CompareEntities(req *dto.CompareEntitiesRequest) (*dto.CompareEntitiesResponse, error)
	DedupeEntities(req *dto.DedupeEntitiesRequest) (*dto.DedupeEntitiesResponse, error)
	PublishQuery(ctx context.Context, req *dto.PublishQueryRequest) (string, error)
	GetQuery(ctx context.Context, queryID string) (*dto.GetQueryResponse, error)
}
