package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/model"
)

// Channel is the redis pub/sub channel carrying generation status events
// from the worker tier to the API tier.
const Channel = "generation:events"

// Event is one status change of a generation. Advisory only: the record in
// the store stays authoritative and clients may always poll instead.
type Event struct {
	GenerationID string                 `json:"generationId"`
	Status       model.GenerationStatus `json:"status"`
	AudioURL     *string                `json:"audioUrl,omitempty"`
	VideoURL     *string                `json:"videoUrl,omitempty"`
	Error        *string                `json:"error,omitempty"`
}

// Publisher emits generation status events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher implements Publisher on a redis client.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe consumes generation events until ctx is canceled, invoking
// handler for each. Malformed messages are logged and dropped.
func Subscribe(ctx context.Context, rdb *redis.Client, handler func(Event)) {
	sub := rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Msg("dropping malformed generation event")
				continue
			}
			handler(event)
		}
	}
}
