package consumer

import (
	"context"

	"github.com/BarkinBalci/insight-query-service/internal/domain"
)

// Envelope wraps a query definition with acknowledgment callbacks
type Envelope struct {
	Query *domain.QueryDefinition
	ack   func(context.Context) error
	nack  func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(query *domain.QueryDefinition, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Query: query,
		ack:   ack,
		nack:  nack,
	}
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack negatively acknowledges processing
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
