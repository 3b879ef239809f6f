package consumer

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
	"github.com/BarkinBalci/insight-query-service/internal/queue"
)

const (
	testTeamID   int64 = 2
	testQueueURL       = "https://sqs.eu-central-1.amazonaws.com/123/insight-queries"

	// legacyProperties is the old-style shorthand older producers still publish
	legacyProperties = `{"$browser__icontains": "chrome"}`
	// canonicalProperties is legacyProperties after normalization
	canonicalProperties = `{"type": "AND", "values": [{"type": "AND", "values": [
		{"type": "event", "key": "$browser", "operator": "icontains", "value": "chrome"}
	]}]}`
)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) ChangeMessageVisibility(ctx context.Context, input *sqs.ChangeMessageVisibilityInput) (*sqs.ChangeMessageVisibilityOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ChangeMessageVisibilityOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.QueryDefinition, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryDefinition), args.Error(1)
}

// MockQueryRepository is a mock implementation of repository.QueryRepository
type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) InsertBatch(ctx context.Context, queries []*domain.QueryDefinition) (int, error) {
	args := m.Called(ctx, queries)
	return args.Int(0), args.Error(1)
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

func (m *MockQueryRepository) GetByID(ctx context.Context, queryID string) (*domain.QueryDefinition, error) {
	args := m.Called(ctx, queryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryDefinition), args.Error(1)
}

// queryBody renders a message body in the shape the API publishes
func queryBody(queryID, kind, properties string) string {
	exclusions := `[]`
	if kind == "FunnelsQuery" {
		exclusions = `[{"kind": "FunnelExclusionEventsNode", "event": "$pageleave", "funnelFromStep": 0, "funnelToStep": 1}]`
	}
	return fmt.Sprintf(`{"query_id": %q, "team_id": %d, "name": "Signups by plan", "kind": %q, "properties": %s, "series": [{"kind": "EventsNode", "event": "$pageview"}], "exclusions": %s}`,
		queryID, testTeamID, kind, properties, exclusions)
}

// publishedQuery builds the SQS message for one published query definition
func publishedQuery(queryID, kind string) types.Message {
	return rawMessage(queryID, kind, queryBody(queryID, kind, legacyProperties))
}

func rawMessage(queryID, kind, body string) types.Message {
	return types.Message{
		MessageId:     aws.String("msg-" + queryID),
		ReceiptHandle: aws.String("receipt-" + queryID),
		Body:          aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			queue.AttributeQueryKind: {DataType: aws.String("String"), StringValue: aws.String(kind)},
			queue.AttributeTeamID:    {DataType: aws.String("Number"), StringValue: aws.String(strconv.FormatInt(testTeamID, 10))},
		},
	}
}

// ackRecorder counts acknowledgments across the envelopes it creates
type ackRecorder struct {
	acked  atomic.Int32
	nacked atomic.Int32
}

func (r *ackRecorder) envelope(query *domain.QueryDefinition) *Envelope {
	return NewEnvelope(query,
		func(context.Context) error {
			r.acked.Add(1)
			return nil
		},
		func(context.Context) error {
			r.nacked.Add(1)
			return nil
		})
}

// parsedQuery runs a published message through the real parser
func parsedQuery(t *testing.T, queryID, kind string) *domain.QueryDefinition {
	t.Helper()
	query, err := NewJSONQueryParser().Parse([]byte(queryBody(queryID, kind, legacyProperties)))
	require.NoError(t, err)
	return query
}

// collect reads from ch until it is closed or the deadline passes
func collect[T any](ch <-chan T, within time.Duration) []T {
	var out []T
	deadline := time.After(within)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, v)
		case <-deadline:
			return out
		}
	}
}
