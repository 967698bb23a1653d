package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SmaylovSerikbay/locals-sub000/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// KafkaSink publishes entity-change events to a Kafka topic for external
// subscribers. Delivery is best-effort from the publisher's perspective;
// the async writer retries internally and failures are only logged.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a sink writing to topic on the given brokers.
// Returns nil when no brokers are configured; a nil sink must not be wired
// into the hub.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	if len(brokers) == 0 {
		return nil
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			Async:        true,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish writes the event keyed by item id so per-item ordering survives
// partitioning.
func (s *KafkaSink) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, "Marshal relay event failed", "error", err)
		return
	}
	key := event.ItemID
	if key == "" {
		key = event.EntityID
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(event.Kind) + ":" + key),
		Value: payload,
	}); err != nil {
		logger.Error(ctx, "Kafka publish failed", "error", err, "entity", event.Kind)
	}
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// EnsureTopic creates the events topic if it does not exist. Called at
// startup; failure leaves the app running without the Kafka stream.
func EnsureTopic(ctx context.Context, brokers []string, topic string) {
	if len(brokers) == 0 {
		return
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()

	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic)
}
