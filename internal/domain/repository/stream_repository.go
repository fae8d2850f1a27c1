package repository

import (
	"context"
	"time"

	"github.com/mapahead-service/internal/domain"
)

// StreamRepository wraps Redis Streams consumer groups.
type StreamRepository interface {
	// ConsumeStream reads messages from the stream until ctx is cancelled.
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// ConsumeBatch reads up to count new messages, blocking at most block.
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]domain.StreamMessage, error)

	AckMessage(ctx context.Context, stream, group, messageID string) error

	AckMessages(ctx context.Context, stream, group string, messageIDs ...string) error

	// CreateConsumerGroup is idempotent.
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream marshals data to JSON under the "data" field.
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
