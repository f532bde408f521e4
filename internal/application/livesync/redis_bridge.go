package livesync

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel carrying invalidations.
const DefaultChannel = "cadetportal:live"

// RedisBridge relays invalidations between instances over Redis pub/sub.
// Messages are "<origin>|<topic>"; an instance ignores its own messages.
type RedisBridge struct {
	client  *redis.Client
	hub     *Hub
	channel string
	origin  string
}

// NewRedisBridge creates a bridge for hub identified by origin.
// PRE: origin is unique per running instance
func NewRedisBridge(client *redis.Client, hub *Hub, origin string) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, channel: DefaultChannel, origin: origin}
}

// Publish announces that topic changed on this instance.
func (b *RedisBridge) Publish(ctx context.Context, topic string) error {
	return b.client.Publish(ctx, b.channel, encodeMessage(b.origin, topic)).Err()
}

// Run applies peer invalidations until ctx is cancelled.
// POST: returns nil on cancellation
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return err
	}
	slog.Info("live_event", "event", "bridge_started", "channel", b.channel, "origin", b.origin)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if topic, ok := b.accept(msg.Payload); ok {
				b.hub.Invalidate(ctx, topic)
			}
		}
	}
}

// accept reports the topic of a peer message, rejecting our own and malformed ones.
func (b *RedisBridge) accept(payload string) (string, bool) {
	origin, topic, ok := decodeMessage(payload)
	if !ok || origin == b.origin {
		return "", false
	}
	return topic, true
}

func encodeMessage(origin, topic string) string {
	return origin + "|" + topic
}

func decodeMessage(payload string) (origin, topic string, ok bool) {
	origin, topic, ok = strings.Cut(payload, "|")
	if !ok || origin == "" || topic == "" {
		return "", "", false
	}
	return origin, topic, true
}
