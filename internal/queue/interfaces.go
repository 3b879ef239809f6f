package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/BarkinBalci/insight-query-service/internal/dto"
)

// Message attributes set on every published query definition
const (
	AttributeQueryKind = "QueryKind"
	AttributeTeamID    = "TeamID"
)

// QueuePublisher defines the interface for publishing query definitions to a queue
type QueuePublisher interface {
	PublishQuery(ctx context.Context, query *dto.CanonicalQuery, queryID string) error
}

// QueueConsumer defines the interface for consuming messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	ChangeMessageVisibility(ctx context.Context, input *sqs.ChangeMessageVisibilityInput) (*sqs.ChangeMessageVisibilityOutput, error)
	QueueURL() string
}
