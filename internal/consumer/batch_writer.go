package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter handles batching and writing query definitions to the repository
type BatchWriter struct {
	repository repository.QueryRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.QueryRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// Start begins processing envelopes, batching, and writing to the repository
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			if len(batch) > 0 {
				w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
			}
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				if len(batch) > 0 {
					w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
					w.processBatch(ctx, batch)
				}
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Info("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Info("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch writes one row per query definition, then acks or nacks every envelope.
// A definition published several times within a batch is written once, at its latest version.
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	queries := latestVersions(envelopes)
	if collapsed := len(envelopes) - len(queries); collapsed > 0 {
		w.log.Debug("Collapsed repeated query definitions",
			zap.Int("collapsed", collapsed))
	}

	insertedCount, err := w.repository.InsertBatch(ctx, queries)

	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("query_count", len(queries)))
		w.nackAll(ctx, envelopes)
		return
	}

	if insertedCount != len(queries) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(queries)))
		w.nackAll(ctx, envelopes)
		return
	}

	w.log.Info("Successfully inserted query definitions",
		zap.Int("count", insertedCount))
	w.ackAll(ctx, envelopes)
}

// latestVersions keeps the highest version of each query ID in first-seen order
func latestVersions(envelopes []*Envelope) []*domain.QueryDefinition {
	index := make(map[string]int, len(envelopes))
	queries := make([]*domain.QueryDefinition, 0, len(envelopes))
	for _, env := range envelopes {
		q := env.Query
		if i, ok := index[q.QueryID]; ok {
			if q.Version > queries[i].Version {
				queries[i] = q
			}
			continue
		}
		index[q.QueryID] = len(queries)
		queries = append(queries, q)
	}
	return queries
}

// ackAll acknowledges all envelopes (deletes from SQS)
func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope",
				zap.String("query_id", env.Query.QueryID),
				zap.Error(err))
		}
	}
}

// nackAll schedules every envelope for redelivery after the retry delay
func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	var failed int
	for _, env := range envelopes {
		if err := env.Nack(ctx); err != nil {
			failed++
		}
	}
	if failed > 0 {
		w.log.Error("Failed to nack envelopes",
			zap.Int("failed", failed),
			zap.Int("total", len(envelopes)))
	}
}
