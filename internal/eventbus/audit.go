// Package eventbus wires the two messaging dependencies the teacher's
// go.mod carries (nats-io/nats.go, twmb/franz-go) into this domain: NATS
// for low-latency internal fan-out the admin bridge mirrors, franz-go for
// a durable audit trail of mutating operations. The two are deliberately
// not redundant: NATS is fire-and-forget pub/sub with no persistence,
// franz-go/Kafka is the durable log a compliance reviewer would replay.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"
)

// AuditRecord is one mutating-operation entry written to the audit topic.
type AuditRecord struct {
	RequestID   int32  `json:"request_id"`
	OpCode      string `json:"op_code"`
	StatusCode  string `json:"status_code"`
	Message     string `json:"message"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// AuditProducerConfig configures the franz-go-backed producer. Grounded
// on the teacher's kafka.ConsumerConfig: same Brokers/Logger shape, a
// single Topic instead of a Topics slice since this producer only ever
// writes one stream.
type AuditProducerConfig struct {
	Brokers []string
	Topic   string
	Logger  *zerolog.Logger
}

// AuditProducer publishes AuditRecords to Kafka using kgo.Client.Produce
// in place of the teacher's PollFetches consume loop — same client
// construction, inverted direction.
type AuditProducer struct {
	client *kgo.Client
	topic  string
	logger *zerolog.Logger

	mu        sync.Mutex
	published uint64
	failed    uint64
}

// NewAuditProducer constructs a producer, or returns (nil, nil) if no
// brokers are configured — mirrors the teacher's NewServer guard of
// "only start the Kafka consumer if brokers configured", applied here to
// making the audit trail an optional enrichment rather than a hard
// dependency.
func NewAuditProducer(cfg AuditProducerConfig) (*AuditProducer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("eventbus: audit topic is required when brokers are configured")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("eventbus: create kafka producer client: %w", err)
	}

	return &AuditProducer{client: client, topic: cfg.Topic, logger: cfg.Logger}, nil
}

// Publish asynchronously writes rec to the audit topic. Non-blocking: the
// franz-go client batches and sends on its own goroutines; the supplied
// callback only updates local counters and logs failures.
func (p *AuditProducer) Publish(ctx context.Context, rec AuditRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		if p.logger != nil {
			p.logger.Error().Err(err).Msg("eventbus: marshal audit record")
		}
		return
	}

	record := &kgo.Record{Topic: p.topic, Value: payload}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.failed++
			if p.logger != nil {
				p.logger.Error().Err(err).Msg("eventbus: audit publish failed")
			}
			return
		}
		p.published++
	})
}

// Metrics reports publish counters, for observability.
func (p *AuditProducer) Metrics() (published, failed uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published, p.failed
}

// Close flushes in-flight produces and closes the client.
func (p *AuditProducer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
