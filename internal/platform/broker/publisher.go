package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"openF1Poll/internal/modules/telemetry/application/port"
	"openF1Poll/internal/modules/telemetry/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher mirrors persisted records to a Kafka topic, one message per record.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

func (p *KafkaPublisher) Name() string {
	return "kafka:" + p.topic
}

func (p *KafkaPublisher) WriteBatch(ctx context.Context, batch domain.Batch) error {
	if len(batch.Records) == 0 {
		return nil
	}
	msgs, err := recordMessages(batch)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	slog.Debug("kafka records published",
		slog.String("topic", p.topic),
		slog.String("endpoint", batch.Endpoint),
		slog.Uint64("tick", batch.Tick),
		slog.Int("records", len(msgs)),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// recordMessages keys every message by endpoint so one endpoint's records stay on one
// partition in response order.
func recordMessages(batch domain.Batch) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(batch.Records))
	at := batch.FetchedAt.UTC()
	if at.IsZero() {
		at = time.Now().UTC()
	}
	for i, record := range batch.Records {
		value, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(batch.Endpoint),
			Value: value,
			Time:  at,
			Headers: []kafka.Header{
				{Key: "runId", Value: []byte(batch.RunID)},
				{Key: "tick", Value: []byte(strconv.FormatUint(batch.Tick, 10))},
			},
		})
	}
	return msgs, nil
}

var _ port.RecordSink = (*KafkaPublisher)(nil)
