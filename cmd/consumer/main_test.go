package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
)

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
	return m.Called(ctx).Error(0)
}

func (m *MockQueryRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockQueryRepository) Close() error {
	return m.Called().Error(0)
}

func TestHealthRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		pingErr  error
		expected int
		body     string
	}{
		{"clickhouse reachable", nil, http.StatusOK, `{"status": "ok"}`},
		{"clickhouse down", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable,
			`{"status": "unavailable", "error": "dial tcp: connection refused"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockQueryRepository)
			repo.On("Ping", mock.Anything).Return(tt.pingErr)

			w := httptest.NewRecorder()
			healthRouter(repo, zap.NewNop()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expected, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
			repo.AssertExpectations(t)
		})
	}
}
