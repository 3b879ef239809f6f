package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
)

// Repository implements QueryRepository for ClickHouse
type Repository struct {
	client *Client
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		log:    log,
	}
}

// InitSchema initializes the ClickHouse schema with ReplacingMergeTree engine.
// Query IDs are derived from content, so re-published definitions collapse into one row.
func (r *Repository) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS query_definitions (
		query_id String,
		team_id Int64,
		name String,
		kind LowCardinality(String),
		properties String,
		series String,
		exclusions String,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (team_id, query_id)
	ORDER BY (team_id, query_id)
	SETTINGS index_granularity = 8192
	`

	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create query_definitions table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of query definitions into ClickHouse
func (r *Repository) InsertBatch(ctx context.Context, queries []*domain.QueryDefinition) (int, error) {
	if len(queries) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO query_definitions")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedCount := 0
	for _, q := range queries {
		version := q.Version
		if version == 0 {
			version = uint64(time.Now().UnixNano())
		}

		err := batch.Append(
			q.QueryID,
			q.TeamID,
			q.Name,
			q.Kind,
			jsonOrDefault(q.Properties, "null"),
			jsonOrDefault(q.Series, "[]"),
			jsonOrDefault(q.Exclusions, "[]"),
			q.ProcessedAt,
			version,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append query definition to batch: %w", err)
		}
		insertedCount++
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return insertedCount, nil
}

// GetByID returns the latest version of a query definition
func (r *Repository) GetByID(ctx context.Context, queryID string) (*domain.QueryDefinition, error) {
	row := r.client.Conn().QueryRow(ctx, `
		SELECT query_id, team_id, name, kind, properties, series, exclusions, processed_at, version
		FROM query_definitions FINAL
		WHERE query_id = ?
		LIMIT 1
	`, queryID)

	var q domain.QueryDefinition
	err := row.Scan(
		&q.QueryID,
		&q.TeamID,
		&q.Name,
		&q.Kind,
		&q.Properties,
		&q.Series,
		&q.Exclusions,
		&q.ProcessedAt,
		&q.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query definition %s: %w", queryID, err)
	}

	return &q, nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

func jsonOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
