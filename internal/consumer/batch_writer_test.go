package consumer

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
)

// canonicalBatch matches inserts of n rows whose filters were normalized by the parser
func canonicalBatch(n int) interface{} {
	return mock.MatchedBy(func(queries []*domain.QueryDefinition) bool {
		if len(queries) != n {
			return false
		}
		for _, q := range queries {
			if q.TeamID != testTeamID || q.Properties == "" || q.Properties == legacyProperties {
				return false
			}
		}
		return true
	})
}

// startWriter runs the writer in the background and returns a channel closed when it exits
func startWriter(ctx context.Context, writer *BatchWriter, in <-chan *Envelope) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		writer.Start(ctx, in)
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch writer did not stop")
	}
}

func TestBatchWriter_Start_FlushesAtBatchSize(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Minute}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(3)).Return(3, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec ackRecorder
	in := make(chan *Envelope, 3)
	startWriter(ctx, writer, in)

	in <- rec.envelope(parsedQuery(t, "trend-1", "TrendsQuery"))
	in <- rec.envelope(parsedQuery(t, "trend-2", "TrendsQuery"))
	in <- rec.envelope(parsedQuery(t, "funnel-1", "FunnelsQuery"))

	require.Eventually(t, func() bool { return rec.acked.Load() == 3 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, rec.nacked.Load())
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_FlushesOnTimeout(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 20 * time.Millisecond}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(2)).Return(2, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec ackRecorder
	in := make(chan *Envelope, 2)
	startWriter(ctx, writer, in)

	in <- rec.envelope(parsedQuery(t, "trend-1", "TrendsQuery"))
	in <- rec.envelope(parsedQuery(t, "funnel-1", "FunnelsQuery"))

	require.Eventually(t, func() bool { return rec.acked.Load() == 2 }, time.Second, 5*time.Millisecond)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_FailedInsertNacksEveryEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		inserted int
		err      error
	}{
		{"insert error", 0, errors.New("database connection error")},
		{"partial insert", 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockQueryRepository)
			writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Minute}, zap.NewNop())

			mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(3)).Return(tt.inserted, tt.err).Once()

			var rec ackRecorder
			in := make(chan *Envelope, 3)
			in <- rec.envelope(parsedQuery(t, "a", "TrendsQuery"))
			in <- rec.envelope(parsedQuery(t, "b", "TrendsQuery"))
			in <- rec.envelope(parsedQuery(t, "c", "FunnelsQuery"))
			close(in)

			writer.Start(context.Background(), in)

			assert.Equal(t, int32(3), rec.nacked.Load())
			assert.Zero(t, rec.acked.Load())
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestBatchWriter_Start_NackErrorsDoNotStopOtherNacks(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Minute}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(0, errors.New("too many parts"))

	var nacked int
	failing := NewEnvelope(parsedQuery(t, "a", "TrendsQuery"), nil, func(context.Context) error {
		nacked++
		return errors.New("receipt handle expired")
	})
	healthy := NewEnvelope(parsedQuery(t, "b", "TrendsQuery"), nil, func(context.Context) error {
		nacked++
		return nil
	})

	in := make(chan *Envelope, 2)
	in <- failing
	in <- healthy
	close(in)

	writer.Start(context.Background(), in)

	assert.Equal(t, 2, nacked)
}

func TestBatchWriter_Start_FlushesOnShutdown(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: time.Minute}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(2)).Return(2, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())

	var rec ackRecorder
	in := make(chan *Envelope, 2)
	in <- rec.envelope(parsedQuery(t, "a", "TrendsQuery"))
	in <- rec.envelope(parsedQuery(t, "b", "FunnelsQuery"))

	done := startWriter(ctx, writer, in)
	require.Eventually(t, func() bool { return len(in) == 0 }, time.Second, time.Millisecond)
	cancel()
	waitDone(t, done)

	assert.Equal(t, int32(2), rec.acked.Load())
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_FlushesWhenInputCloses(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: time.Minute}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(2)).Return(2, nil).Once()

	var rec ackRecorder
	in := make(chan *Envelope, 2)
	in <- rec.envelope(parsedQuery(t, "a", "TrendsQuery"))
	in <- rec.envelope(parsedQuery(t, "b", "TrendsQuery"))
	close(in)

	waitDone(t, startWriter(context.Background(), writer, in))

	assert.Equal(t, int32(2), rec.acked.Load())
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_EmptyBatchNotFlushed(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 10 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	waitDone(t, startWriter(ctx, writer, make(chan *Envelope)))

	mockRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestBatchWriter_Start_MultipleBatches(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Minute}, zap.NewNop())

	mockRepo.On("InsertBatch", mock.Anything, canonicalBatch(2)).Return(2, nil).Times(2)

	var rec ackRecorder
	in := make(chan *Envelope, 4)
	for _, id := range []string{"a", "b", "c", "d"} {
		in <- rec.envelope(parsedQuery(t, id, "TrendsQuery"))
	}
	close(in)

	writer.Start(context.Background(), in)

	assert.Equal(t, int32(4), rec.acked.Load())
	mockRepo.AssertNumberOfCalls(t, "InsertBatch", 2)
}

func TestBatchWriter_Start_CollapsesRepeatedQueries(t *testing.T) {
	mockRepo := new(MockQueryRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Minute}, zap.NewNop())

	first := parsedQuery(t, "a", "TrendsQuery")
	first.Version = 1
	other := parsedQuery(t, "b", "FunnelsQuery")
	other.Version = 2
	republished := parsedQuery(t, "a", "TrendsQuery")
	republished.Name = "Signups by plan (renamed)"
	republished.Version = 3

	mockRepo.On("InsertBatch", mock.Anything, mock.MatchedBy(func(queries []*domain.QueryDefinition) bool {
		return len(queries) == 2 &&
			queries[0].QueryID == "a" && queries[0].Version == 3 && queries[0].Name == republished.Name &&
			queries[1].QueryID == "b"
	})).Return(2, nil).Once()

	var rec ackRecorder
	in := make(chan *Envelope, 3)
	in <- rec.envelope(first)
	in <- rec.envelope(other)
	in <- rec.envelope(republished)
	close(in)

	writer.Start(context.Background(), in)

	mockRepo.AssertExpectations(t)
	assert.Equal(t, int32(3), rec.acked.Load())
}

func TestLatestVersions_KeepsFirstSeenOrder(t *testing.T) {
	envelopes := []*Envelope{
		NewEnvelope(&domain.QueryDefinition{QueryID: "x", Version: 5}, nil, nil),
		NewEnvelope(&domain.QueryDefinition{QueryID: "y", Version: 1}, nil, nil),
		NewEnvelope(&domain.QueryDefinition{QueryID: "x", Version: 4}, nil, nil),
	}

	queries := latestVersions(envelopes)

	require.Len(t, queries, 2)
	assert.Equal(t, "x", queries[0].QueryID)
	assert.Equal(t, uint64(5), queries[0].Version)
	assert.Equal(t, "y", queries[1].QueryID)
}
