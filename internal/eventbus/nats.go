package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NotificationSubject is the NATS subject every bank.Hooks notification
// is mirrored to, for the admin bridge (internal/adminbridge) to
// subscribe and forward as operator-console frames.
const NotificationSubject = "bankrpcd.notifications"

// Bus publishes domain notifications over NATS. It is the low-latency,
// no-persistence counterpart to AuditProducer: repurposed from the
// teacher's listed-but-unwired nats-io/nats.go dependency (present in
// ws/go.mod for a planned market-data integration the teacher's ws/
// package never implements) into this server's control-plane event
// fan-out.
type Bus struct {
	conn   *nats.Conn
	logger *zerolog.Logger
}

// Connect dials url, or returns (nil, nil) if url is empty — optional,
// nil-safe, matching the same "only connect if configured" guard used by
// AuditProducer and the teacher's own Kafka-consumer startup gate.
func Connect(url string, logger *zerolog.Logger) (*Bus, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect to nats: %w", err)
	}
	return &Bus{conn: conn, logger: logger}, nil
}

// Publish marshals v to JSON and publishes it to NotificationSubject.
// Fire-and-forget: NATS publish does not block on subscriber delivery.
func (b *Bus) Publish(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		if b.logger != nil {
			b.logger.Error().Err(err).Msg("eventbus: marshal notification")
		}
		return
	}
	if err := b.conn.Publish(NotificationSubject, payload); err != nil {
		if b.logger != nil {
			b.logger.Error().Err(err).Msg("eventbus: nats publish failed")
		}
	}
}

// Subscribe hands every message on NotificationSubject to handler, for
// internal/adminbridge to mirror into its operator-console connections.
func (b *Bus) Subscribe(handler func(payload []byte)) (*nats.Subscription, error) {
	return b.conn.Subscribe(NotificationSubject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	_ = b.conn.Drain()
}
