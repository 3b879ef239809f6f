package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/dto"
	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
	"github.com/BarkinBalci/insight-query-service/internal/queue"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
)

// ErrInvalidQuery is returned when a query definition is structurally valid JSON but not a usable query
var ErrInvalidQuery = errors.New("invalid query definition")

// queryNamespace scopes the name-based UUIDs derived from canonical query definitions
var queryNamespace = uuid.MustParse("8d0f5a6e-3b7c-4f1e-9a2d-6c4b1e7f0a93")

// QueryService represents query definition service
type QueryService struct {
	publisher  queue.QueuePublisher
	repository repository.QueryRepository
	comparator *entity.Comparator
	log        *zap.Logger
}

// NewQueryService creates a new query service
func NewQueryService(publisher queue.QueuePublisher, repo repository.QueryRepository, comparator *entity.Comparator, log *zap.Logger) *QueryService {
	return &QueryService{
		publisher:  publisher,
		repository: repo,
		comparator: comparator,
		log:        log,
	}
}

// computeQueryID generates a deterministic query ID from the canonical definition,
// so semantically identical definitions published twice share one ID
func computeQueryID(query *dto.CanonicalQuery) (string, error) {
	data, err := json.Marshal(query)
	if err != nil {
		return "", fmt.Errorf("failed to marshal canonical query: %w", err)
	}
	return uuid.NewSHA1(queryNamespace, data).String(), nil
}

// NormalizeFilters converts global filters into the canonical two-level tree
func (s *QueryService) NormalizeFilters(req *dto.NormalizeFiltersRequest) (*dto.NormalizeFiltersResponse, error) {
	group, err := properties.NormalizeGlobal(req.Properties)
	if err != nil {
		s.log.Warn("Failed to normalize global filters", zap.Error(err))
		return nil, err
	}

	return &dto.NormalizeFiltersResponse{Properties: group}, nil
}

// NormalizeEntityFilters converts entity filters into a flat list of cleaned leaves
func (s *QueryService) NormalizeEntityFilters(req *dto.NormalizeFiltersRequest) (*dto.NormalizeEntityFiltersResponse, error) {
	props, err := properties.NormalizeEntity(req.Properties)
	if err != nil {
		s.log.Warn("Failed to normalize entity filters", zap.Error(err))
		return nil, err
	}

	if props == nil {
		props = []properties.PropertyFilter{}
	}
	return &dto.NormalizeEntityFiltersResponse{Properties: props}, nil
}

// CompareEntities reports equality and superset relations in both directions
func (s *QueryService) CompareEntities(req *dto.CompareEntitiesRequest) (*dto.CompareEntitiesResponse, error) {
	equal, err := s.comparator.Equal(&req.A, &req.B)
	if err != nil {
		s.log.Warn("Entity comparison not supported",
			zap.String("kind_a", string(req.A.Kind)),
			zap.String("kind_b", string(req.B.Kind)),
			zap.Error(err))
		return nil, err
	}

	aSupersetOfB, err := s.comparator.IsSuperset(&req.A, &req.B)
	if err != nil {
		return nil, err
	}
	bSupersetOfA, err := s.comparator.IsSuperset(&req.B, &req.A)
	if err != nil {
		return nil, err
	}

	return &dto.CompareEntitiesResponse{
		Equal:        equal,
		ASupersetOfB: aSupersetOfB,
		BSupersetOfA: bSupersetOfA,
	}, nil
}

// DedupeEntities removes duplicate series and redundant exclusions
func (s *QueryService) DedupeEntities(req *dto.DedupeEntitiesRequest) (*dto.DedupeEntitiesResponse, error) {
	series, err := s.comparator.Dedupe(req.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to dedupe series: %w", err)
	}

	exclusions, err := s.comparator.MergeExclusions(req.Exclusions)
	if err != nil {
		return nil, fmt.Errorf("failed to merge exclusions: %w", err)
	}

	return &dto.DedupeEntitiesResponse{
		Series:            series,
		Exclusions:        exclusions,
		RemovedSeries:     len(req.Series) - len(series),
		RemovedExclusions: len(req.Exclusions) - len(exclusions),
	}, nil
}

// canonicalize normalizes filters and merges redundant exclusions.
// Series are kept as sent since repeated series are meaningful in trends.
func (s *QueryService) canonicalize(req *dto.PublishQueryRequest) (*dto.CanonicalQuery, error) {
	for i, e := range req.Series {
		if e.Kind.IsExclusion() || (e.Kind != entity.KindEvents && e.Kind != entity.KindActions) {
			return nil, fmt.Errorf("%w: series %d has unsupported kind %q", ErrInvalidQuery, i, e.Kind)
		}
	}

	if len(req.Exclusions) > 0 && req.Kind != "FunnelsQuery" {
		return nil, fmt.Errorf("%w: exclusions are only supported for funnels", ErrInvalidQuery)
	}
	for i, e := range req.Exclusions {
		if !e.Kind.IsExclusion() {
			return nil, fmt.Errorf("%w: exclusion %d has kind %q", ErrInvalidQuery, i, e.Kind)
		}
	}

	props, err := properties.NormalizeGlobal(req.Properties)
	if err != nil {
		return nil, err
	}

	exclusions, err := s.comparator.MergeExclusions(req.Exclusions)
	if err != nil {
		return nil, err
	}

	if len(exclusions) < len(req.Exclusions) {
		s.log.Info("Merged redundant exclusions",
			zap.Int("before", len(req.Exclusions)),
			zap.Int("after", len(exclusions)))
	}

	return &dto.CanonicalQuery{
		TeamID:     req.TeamID,
		Name:       req.Name,
		Kind:       req.Kind,
		Properties: props,
		Series:     req.Series,
		Exclusions: exclusions,
	}, nil
}

// PublishQuery normalizes a query definition and publishes it to the queue
func (s *QueryService) PublishQuery(ctx context.Context, req *dto.PublishQueryRequest) (string, error) {
	query, err := s.canonicalize(req)
	if err != nil {
		s.log.Warn("Query definition rejected",
			zap.Int64("team_id", req.TeamID),
			zap.String("kind", req.Kind),
			zap.Error(err))
		return "", err
	}

	queryID, err := computeQueryID(query)
	if err != nil {
		return "", err
	}

	if err := s.publisher.PublishQuery(ctx, query, queryID); err != nil {
		return "", fmt.Errorf("failed to publish query definition to queue: %w", err)
	}

	return queryID, nil
}

// GetQuery retrieves a stored query definition
func (s *QueryService) GetQuery(ctx context.Context, queryID string) (*dto.GetQueryResponse, error) {
	q, err := s.repository.GetByID(ctx, queryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("Failed to load query definition",
				zap.String("query_id", queryID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to get query definition from repository: %w", err)
	}

	return &dto.GetQueryResponse{
		QueryID:     q.QueryID,
		TeamID:      q.TeamID,
		Name:        q.Name,
		Kind:        q.Kind,
		Properties:  rawJSON(q.Properties, "null"),
		Series:      rawJSON(q.Series, "[]"),
		Exclusions:  rawJSON(q.Exclusions, "[]"),
		ProcessedAt: q.ProcessedAt,
	}, nil
}

func rawJSON(s, def string) json.RawMessage {
	if s == "" || !json.Valid([]byte(s)) {
		return json.RawMessage(def)
	}
	return json.RawMessage(s)
}
