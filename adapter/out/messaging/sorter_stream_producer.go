// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"sorter_server/core/port/out"
)

// Stream names
const (
	StreamInbox = "inbox:messages"
)

// RedisProducer implements out.InboxPublisher using Redis Streams.
type RedisProducer struct {
	client redis.Cmdable
	stream string
}

// NewRedisProducer creates a producer writing to stream, or StreamInbox when stream is empty.
func NewRedisProducer(client redis.Cmdable, stream string) *RedisProducer {
	if stream == "" {
		stream = StreamInbox
	}
	return &RedisProducer{client: client, stream: stream}
}

// PublishInbox publishes a message for asynchronous filing.
func (p *RedisProducer) PublishInbox(ctx context.Context, job *out.InboxJob) error {
	return p.publish(ctx, p.stream, job)
}

// Stream returns the stream the producer writes to.
func (p *RedisProducer) Stream() string { return p.stream }

func (p *RedisProducer) publish(ctx context.Context, stream string, job any) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]any{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}
	return nil
}

var _ out.InboxPublisher = (*RedisProducer)(nil)
