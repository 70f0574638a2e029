package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// wireMessage is the shape carried over the shared Redis Pub/Sub channel.
type wireMessage struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBridge fans published messages out across instances: every publish goes
// to one shared Redis channel, and each instance's subscriber loop replays the
// message into its local hub. With a single instance the in-memory Hub can be
// used directly instead.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
}

// NewRedisBridge wires the hub to a Redis Pub/Sub channel and starts the
// replay loop. The loop stops when ctx is cancelled.
func NewRedisBridge(ctx context.Context, client *redis.Client, channel string, hub *Hub) *RedisBridge {
	bridge := &RedisBridge{client: client, channel: channel, hub: hub}
	go bridge.run(ctx)
	return bridge
}

// Publish sends the message to the shared Redis channel. Errors are logged
// and swallowed: persisted state is the source of truth and clients reconcile
// on reconnect, so a lost push is never surfaced to the caller.
func (b *RedisBridge) Publish(topic string, message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to encode push message")
		return
	}
	raw, err := json.Marshal(wireMessage{Topic: topic, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to encode wire message")
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, raw).Err(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to publish push message")
	}
}

func (b *RedisBridge) run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	log.Info().Str("channel", b.channel).Msg("redis fan-out bridge started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var wire wireMessage
			if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
				log.Error().Err(err).Msg("failed to decode wire message")
				continue
			}
			b.hub.Publish(wire.Topic, wire.Payload)
		}
	}
}
