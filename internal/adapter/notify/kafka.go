package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/infrastructure/metrics"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes each event as JSON, keyed by request id so the
// events of one request stay on one partition in order.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaWriter builds a writer bound to topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e notification.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(e.Type).Inc()
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(e.RequestID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
		},
	})
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(e.Type).Inc()
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }
