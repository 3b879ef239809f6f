package consumer

import (
	"github.com/BarkinBalci/insight-query-service/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into query definitions
type MessageParser interface {
	Parse(body []byte) (*domain.QueryDefinition, error)
}
