package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/config"
	"github.com/BarkinBalci/insight-query-service/internal/queue"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
)

// Consumer orchestrates a pipeline of stages that stores published query definitions
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
	bufferSize  int
}

// NewConsumer creates a new consumer with a pipeline architecture
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, repo repository.QueryRepository, log *zap.Logger) *Consumer {
	c := cfg.Consumer
	if c.MaxMessages <= 0 {
		c.MaxMessages = 10
	}
	if c.WaitTimeSec <= 0 {
		c.WaitTimeSec = 20
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 100
	}

	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     c.MaxMessages,
		WaitTimeSeconds: c.WaitTimeSec,
		BufferSize:      c.BufferSize,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONQueryParser(), ParserStageConfig{
		RetryDelaySeconds: c.RetryDelaySec,
	}, log)

	batchWriter := NewBatchWriter(repo, BatchWriterConfig{
		MaxBatchSize: c.BatchSizeMax,
		FlushTimeout: time.Duration(c.BatchTimeoutSec) * time.Second,
	}, log)

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
		bufferSize:  c.BufferSize,
	}
}

// Start runs the pipeline until ctx is cancelled and every stage has drained
func (c *Consumer) Start(ctx context.Context) error {
	bufferSize := c.bufferSize
	if bufferSize <= 0 {
		bufferSize = 100
	}
	messageChan := make(chan types.Message, bufferSize)
	envelopeChan := make(chan *Envelope, bufferSize)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messageChan)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messageChan, envelopeChan)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, envelopeChan)
	}()

	wg.Wait()
	return nil
}
