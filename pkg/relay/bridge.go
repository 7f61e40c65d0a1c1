package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/evalforge/notifykit/pkg/logger"
)

// Bridge forwards events published on a Redis pub/sub channel to
// connected clients. Backend services emit notifications by publishing
// the Event JSON shape to the channel; the relay handles fan-out and
// room scoping. Malformed payloads are logged and dropped.
type Bridge struct {
	client  redis.UniversalClient
	channel string
	pub     Publisher
	log     *slog.Logger
}

// NewBridge creates a Bridge over an established Redis client. A nil
// logger is replaced with a no-op.
func NewBridge(client redis.UniversalClient, channel string, pub Publisher, log *slog.Logger) *Bridge {
	if log == nil {
		log = logger.NewNoop()
	}
	return &Bridge{client: client, channel: channel, pub: pub, log: log}
}

// Run subscribes and forwards until ctx is cancelled. A closed
// subscription ends the run with ErrBridgeClosed.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Fail fast on a subscription that never established.
	if _, err := sub.Receive(ctx); err != nil {
		return errors.Join(ErrBridgeClosed, err)
	}

	b.log.LogAttrs(ctx, slog.LevelInfo, "redis bridge subscribed",
		slog.String("channel", b.channel),
	)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return ErrBridgeClosed
			}
			b.forward(ctx, []byte(msg.Payload))
		}
	}
}

func (b *Bridge) forward(ctx context.Context, payload []byte) {
	event, err := decodeEvent(payload)
	if err != nil {
		b.log.LogAttrs(ctx, slog.LevelWarn, "dropping malformed bridge payload",
			logger.Error(err),
		)
		return
	}

	delivered := b.pub.Publish(event)
	b.log.LogAttrs(ctx, slog.LevelDebug, "bridge event forwarded",
		logger.FrameType(event.Type),
		slog.Int("delivered", delivered),
	)
}

// decodeEvent parses and validates one bridge payload.
func decodeEvent(payload []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return Event{}, err
	}
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	return event, nil
}
