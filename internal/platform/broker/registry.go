package broker

import (
	"log/slog"
	"strings"

	"openF1Poll/internal/modules/telemetry/application/port"
)

// NewKafkaMirror returns a publisher for the configured topic, or nil when Kafka is not
// configured. kafka.Writer is never built with an empty broker list.
func NewKafkaMirror(brokers []string, topic string) port.RecordSink {
	active := make([]string, 0, len(brokers))
	for _, broker := range brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			active = append(active, trimmed)
		}
	}
	trimmedTopic := strings.TrimSpace(topic)
	if len(active) == 0 || trimmedTopic == "" {
		return nil
	}
	slog.Info("kafka mirror enabled", slog.Any("brokers", active), slog.String("topic", trimmedTopic))
	return NewKafkaPublisher(active, trimmedTopic)
}
