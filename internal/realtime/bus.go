package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// busChannel is the Redis pub/sub channel all processes share.
// Connections are not co-located with the process that publishes an
// event, so every publish goes through Redis and comes back to each
// process's hub.
const busChannel = "realtime:events"

type busFrame struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Bus is the cross-process broadcast fabric backed by Redis pub/sub.
type Bus struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewBus builds the bus over a shared Redis client.
func NewBus(client *redis.Client, hub *Hub, logger *zap.Logger) *Bus {
	return &Bus{client: client, hub: hub, logger: logger, done: make(chan struct{})}
}

// Publish sends an event to every subscriber of the room, across all
// processes. Fire-and-forget: publishers never await delivery.
func (b *Bus) Publish(ctx context.Context, room, event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(busFrame{Room: room, Event: event, Data: raw})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, busChannel, frame).Err()
}

// Start subscribes to the bus channel and pumps incoming frames into
// the local hub until Close is called.
func (b *Bus) Start(ctx context.Context) {
	b.pubsub = b.client.Subscribe(ctx, busChannel)
	go func() {
		defer close(b.done)
		for msg := range b.pubsub.Channel() {
			var frame busFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				b.logger.Warn("malformed bus frame", zap.Error(err))
				continue
			}
			b.hub.Broadcast(frame.Room, Envelope{Event: frame.Event, Data: frame.Data})
		}
	}()
}

// Close stops the subscription and waits for the pump to drain.
func (b *Bus) Close() {
	if b.pubsub == nil {
		return
	}
	_ = b.pubsub.Close()
	<-b.done
}
