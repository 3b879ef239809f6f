package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
	"github.com/BarkinBalci/insight-query-service/internal/dto"
	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
)

// MockQueuePublisher is a mock implementation of queue.QueuePublisher
type MockQueuePublisher struct {
	mock.Mock
}

func (m *MockQueuePublisher) PublishQuery(ctx context.Context, query *dto.CanonicalQuery, queryID string) error {
	args := m.Called(ctx, query, queryID)
	return args.Error(0)
}

// MockQueryRepository is a mock implementation of repository.QueryRepository
type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) InsertBatch(ctx context.Context, queries []*domain.QueryDefinition) (int, error) {
	args := m.Called(ctx, queries)
	return args.Int(0), args.Error(1)
}

func (m *MockQueryRepository) GetByID(ctx context.Context, queryID string) (*domain.QueryDefinition, error) {
	args := m.Called(ctx, queryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryDefinition), args.Error(1)
}

func (m *MockQueryRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockQueryRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockQueryRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	propPlan = properties.PropertyFilter{Type: properties.TypePerson, Key: "plan", Operator: properties.OperatorExact, Value: "pro"}
	propOS   = properties.PropertyFilter{Type: properties.TypeEvent, Key: "$os", Operator: properties.OperatorExact, Value: "Mac OS X"}
)

func newTestService(t *testing.T) (*QueryService, *MockQueuePublisher, *MockQueryRepository) {
	cache, err := entity.NewSignatureCache(32)
	require.NoError(t, err)

	mockPublisher := new(MockQueuePublisher)
	mockRepo := new(MockQueryRepository)
	return NewQueryService(mockPublisher, mockRepo, entity.NewComparator(cache), zap.NewNop()), mockPublisher, mockRepo
}

func funnelRequest() *dto.PublishQueryRequest {
	return &dto.PublishQueryRequest{
		TeamID:     2,
		Name:       "Signup funnel",
		Kind:       "FunnelsQuery",
		Properties: map[string]interface{}{"plan__icontains": "pro"},
		Series: []entity.Entity{
			{Kind: entity.KindEvents, Event: "$pageview"},
			{Kind: entity.KindEvents, Event: "signed_up"},
		},
	}
}

func TestQueryService_NormalizeFilters_OldStyle(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.NormalizeFilters(&dto.NormalizeFiltersRequest{
		Properties: map[string]interface{}{"$browser": "Chrome"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Properties.Values, 1)
	inner, ok := resp.Properties.Values[0].(*properties.FilterGroup)
	require.True(t, ok)
	assert.Equal(t, properties.CombinatorAnd, inner.Type)
	assert.Equal(t, properties.PropertyFilter{
		Type: properties.TypeEvent, Key: "$browser", Operator: properties.OperatorExact, Value: "Chrome",
	}, inner.Values[0])
}

func TestQueryService_NormalizeFilters_InvalidFormat(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.NormalizeFilters(&dto.NormalizeFiltersRequest{Properties: "not filters"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, properties.ErrInvalidFormat)
}

func TestQueryService_NormalizeEntityFilters_EmptyIsList(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.NormalizeEntityFilters(&dto.NormalizeFiltersRequest{Properties: nil})

	require.NoError(t, err)
	assert.NotNil(t, resp.Properties)
	assert.Empty(t, resp.Properties)
}

func TestQueryService_CompareEntities(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.CompareEntities(&dto.CompareEntitiesRequest{
		A: entity.Entity{Kind: entity.KindEvents, Event: "$pageview", Properties: []properties.PropertyFilter{propPlan, propOS}},
		B: entity.Entity{Kind: entity.KindExclusionEvents, Event: "$pageview", Properties: []properties.PropertyFilter{propPlan}},
	})

	require.NoError(t, err)
	assert.False(t, resp.Equal)
	assert.True(t, resp.ASupersetOfB)
	assert.False(t, resp.BSupersetOfA)
}

func TestQueryService_CompareEntities_Unsupported(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.CompareEntities(&dto.CompareEntitiesRequest{
		A: entity.Entity{Kind: "DataWarehouseNode"},
		B: entity.Entity{Kind: entity.KindEvents, Event: "$pageview"},
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, entity.ErrUnsupportedComparison)
}

func TestQueryService_DedupeEntities(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.DedupeEntities(&dto.DedupeEntitiesRequest{
		Series: []entity.Entity{
			{Kind: entity.KindEvents, Event: "$pageview", Properties: []properties.PropertyFilter{propPlan, propOS}},
			{Kind: entity.KindEvents, Event: "$pageview", Properties: []properties.PropertyFilter{propOS, propPlan}},
			{Kind: entity.KindActions, ID: 4},
		},
		Exclusions: []entity.Entity{
			{Kind: entity.KindExclusionEvents, Event: "$pageleave", Properties: []properties.PropertyFilter{propPlan, propOS}},
			{Kind: entity.KindExclusionEvents, Event: "$pageleave", Properties: []properties.PropertyFilter{propPlan}},
		},
	})

	require.NoError(t, err)
	assert.Len(t, resp.Series, 2)
	assert.Equal(t, 1, resp.RemovedSeries)
	require.Len(t, resp.Exclusions, 1)
	assert.Equal(t, []properties.PropertyFilter{propPlan}, resp.Exclusions[0].Properties)
	assert.Equal(t, 1, resp.RemovedExclusions)
}

func TestQueryService_PublishQuery_Success(t *testing.T) {
	svc, mockPublisher, _ := newTestService(t)

	var published *dto.CanonicalQuery
	mockPublisher.On("PublishQuery", mock.Anything, mock.AnythingOfType("*dto.CanonicalQuery"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*dto.CanonicalQuery)
		}).
		Return(nil)

	queryID, err := svc.PublishQuery(context.Background(), funnelRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, queryID)
	require.NotNil(t, published)
	assert.Equal(t, int64(2), published.TeamID)
	assert.Equal(t, properties.CombinatorAnd, published.Properties.Type)
	assert.Len(t, published.Series, 2)
	mockPublisher.AssertExpectations(t)
}

func TestQueryService_PublishQuery_DeterministicID(t *testing.T) {
	svc, mockPublisher, _ := newTestService(t)
	mockPublisher.On("PublishQuery", mock.Anything, mock.Anything, mock.AnythingOfType("string")).Return(nil)

	first, err := svc.PublishQuery(context.Background(), funnelRequest())
	require.NoError(t, err)

	// Same filters written in the canonical form produce the same ID
	req := funnelRequest()
	req.Properties = map[string]interface{}{
		"type": "AND",
		"values": []interface{}{
			map[string]interface{}{
				"type":   "AND",
				"values": []interface{}{map[string]interface{}{"type": "event", "key": "plan", "operator": "icontains", "value": "pro"}},
			},
		},
	}
	second, err := svc.PublishQuery(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	req.Name = "Renamed"
	third, err := svc.PublishQuery(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestQueryService_PublishQuery_MergesExclusions(t *testing.T) {
	svc, mockPublisher, _ := newTestService(t)

	var published *dto.CanonicalQuery
	mockPublisher.On("PublishQuery", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).(*dto.CanonicalQuery)
		}).
		Return(nil)

	req := funnelRequest()
	req.Exclusions = []entity.Entity{
		{Kind: entity.KindExclusionEvents, Event: "$pageleave"},
		{Kind: entity.KindExclusionEvents, Event: "$pageleave", Properties: []properties.PropertyFilter{propOS}},
	}

	_, err := svc.PublishQuery(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, published.Exclusions, 1)
	assert.Empty(t, published.Exclusions[0].Properties)
}

func TestQueryService_PublishQuery_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.PublishQueryRequest)
		target error
	}{
		{
			name: "exclusion used as series",
			mutate: func(r *dto.PublishQueryRequest) {
				r.Series[0].Kind = entity.KindExclusionEvents
			},
			target: ErrInvalidQuery,
		},
		{
			name: "exclusions outside funnels",
			mutate: func(r *dto.PublishQueryRequest) {
				r.Kind = "TrendsQuery"
				r.Exclusions = []entity.Entity{{Kind: entity.KindExclusionEvents, Event: "x"}}
			},
			target: ErrInvalidQuery,
		},
		{
			name: "series node as exclusion",
			mutate: func(r *dto.PublishQueryRequest) {
				r.Exclusions = []entity.Entity{{Kind: entity.KindEvents, Event: "x"}}
			},
			target: ErrInvalidQuery,
		},
		{
			name: "malformed properties",
			mutate: func(r *dto.PublishQueryRequest) {
				r.Properties = 42
			},
			target: properties.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockPublisher, _ := newTestService(t)
			req := funnelRequest()
			tt.mutate(req)

			queryID, err := svc.PublishQuery(context.Background(), req)

			assert.ErrorIs(t, err, tt.target)
			assert.Empty(t, queryID)
			mockPublisher.AssertNotCalled(t, "PublishQuery")
		})
	}
}

func TestQueryService_PublishQuery_SQSPublishError(t *testing.T) {
	svc, mockPublisher, _ := newTestService(t)
	mockPublisher.On("PublishQuery", mock.Anything, mock.Anything, mock.AnythingOfType("string")).
		Return(errors.New("SQS connection error"))

	queryID, err := svc.PublishQuery(context.Background(), funnelRequest())

	assert.Error(t, err)
	assert.Empty(t, queryID)
	assert.Contains(t, err.Error(), "failed to publish query definition to queue")
	mockPublisher.AssertExpectations(t)
}

func TestQueryService_GetQuery_Success(t *testing.T) {
	svc, _, mockRepo := newTestService(t)
	processedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mockRepo.On("GetByID", mock.Anything, "q-1").Return(&domain.QueryDefinition{
		QueryID:     "q-1",
		TeamID:      2,
		Name:        "Signup funnel",
		Kind:        "FunnelsQuery",
		Properties:  `{"type":"AND","values":[]}`,
		Series:      `[{"kind":"EventsNode","event":"$pageview"}]`,
		Exclusions:  "",
		ProcessedAt: processedAt,
	}, nil)

	resp, err := svc.GetQuery(context.Background(), "q-1")

	require.NoError(t, err)
	assert.Equal(t, "q-1", resp.QueryID)
	assert.JSONEq(t, `{"type":"AND","values":[]}`, string(resp.Properties))
	assert.JSONEq(t, `[{"kind":"EventsNode","event":"$pageview"}]`, string(resp.Series))
	assert.JSONEq(t, `[]`, string(resp.Exclusions))
	assert.Equal(t, processedAt, resp.ProcessedAt)
	mockRepo.AssertExpectations(t)
}

func TestQueryService_GetQuery_NotFound(t *testing.T) {
	svc, _, mockRepo := newTestService(t)
	mockRepo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	resp, err := svc.GetQuery(context.Background(), "missing")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
