package consumer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/insight-query-service/internal/queue"
)

// ParserStageConfig configures the parser stage
type ParserStageConfig struct {
	// RetryDelaySeconds is the visibility timeout set on nacked messages.
	// Zero makes a nacked message visible again immediately.
	RetryDelaySeconds int32
}

// ParserStage turns SQS messages into query definition envelopes
type ParserStage struct {
	consumer queue.QueueConsumer
	parser   MessageParser
	config   ParserStageConfig
	log      *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(consumer queue.QueueConsumer, parser MessageParser, config ParserStageConfig, log *zap.Logger) *ParserStage {
	return &ParserStage{
		consumer: consumer,
		parser:   parser,
		config:   config,
		log:      log,
	}
}

// Start begins parsing messages and outputs envelopes
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- envelope:
			}
		}
	}
}

// parseMessage parses a single SQS message into an envelope.
// Messages that cannot be parsed will never succeed and are deleted.
func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	query, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Failed to parse query definition",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.String("query_kind", messageAttribute(msg, queue.AttributeQueryKind)),
			zap.Error(err))
		if err := p.deleteMessage(ctx, msg); err != nil {
			p.log.Error("Failed to delete malformed message",
				zap.String("message_id", aws.ToString(msg.MessageId)),
				zap.Error(err))
			return nil
		}
		p.log.Info("Deleted malformed message from SQS",
			zap.String("message_id", aws.ToString(msg.MessageId)))
		return nil
	}

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	nack := func(ctx context.Context) error {
		return p.delayRetry(ctx, msg)
	}

	return NewEnvelope(query, ack, nack)
}

// deleteMessage deletes a message from SQS
func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.log.Error("Failed to delete message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	return nil
}

// delayRetry sets the message's visibility timeout so it is redelivered after the retry delay
func (p *ParserStage) delayRetry(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.ChangeMessageVisibility(ctx, &awssqs.ChangeMessageVisibilityInput{
		QueueUrl:          aws.String(p.consumer.QueueURL()),
		ReceiptHandle:     msg.ReceiptHandle,
		VisibilityTimeout: p.config.RetryDelaySeconds,
	})
	if err != nil {
		p.log.Error("Failed to change message visibility",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	return nil
}
