package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// Dedup answers whether a message was already processed by this consumer.
type Dedup interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// DeliveryHandler consumes the notifications topic and hands each envelope to
// a delivery function (email, push; the default just logs). Duplicate
// deliveries are suppressed through the inbox store.
type DeliveryHandler struct {
	Dedup   Dedup
	Logger  *slog.Logger
	Deliver func(ctx context.Context, to string, event string, payload json.RawMessage) error
}

type deliveryEnvelope struct {
	To      string          `json:"to"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func (h DeliveryHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var env deliveryEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// Malformed messages are acked, not retried forever.
		h.logger().Warn("notification envelope malformed", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if h.Dedup != nil {
		seen, err := h.Dedup.Seen(ctx, messageID(msg))
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	if h.Deliver != nil {
		return h.Deliver(ctx, env.To, env.Event, env.Payload)
	}
	h.logger().Info("notification delivered", "to", env.To, "event", env.Event)
	return nil
}

func messageID(msg *sarama.ConsumerMessage) string {
	return fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
}

func (h DeliveryHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
