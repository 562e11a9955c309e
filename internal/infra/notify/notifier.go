package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rentable/internal/infra/broker/kafka"
)

// KafkaNotifier publishes notification envelopes to a single topic keyed by
// recipient, leaving delivery (email, push) to downstream consumers.
type KafkaNotifier struct {
	Producer *kafka.Producer
	Topic    string
}

type envelope struct {
	To      string    `json:"to"`
	Event   string    `json:"event"`
	Payload any       `json:"payload,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

func (n *KafkaNotifier) Send(ctx context.Context, to string, event string, payload any) error {
	body, err := json.Marshal(envelope{To: to, Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	headers := map[string]string{"content-type": "application/json", "event": event}
	return n.Producer.Publish(ctx, n.Topic, to, body, headers)
}

// LogNotifier writes notifications to the log. Used in development and as the
// fallback when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, to string, event string, payload any) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification", "to", to, "event", event, "payload", payload)
	return nil
}
