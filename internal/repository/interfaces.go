package repository

import (
	"context"
	"errors"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
)

// ErrNotFound is returned when a query definition does not exist
var ErrNotFound = errors.New("query definition not found")

// QueryRepository defines the interface for query definition storage operations
type QueryRepository interface {
	// InsertBatch inserts a batch of query definitions into the storage
	InsertBatch(ctx context.Context, queries []*domain.QueryDefinition) (int, error)

	// GetByID returns the latest version of a query definition
	GetByID(ctx context.Context, queryID string) (*domain.QueryDefinition, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}
