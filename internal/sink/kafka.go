package sink

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes each event as a JSON message keyed by the log key, so all
// events of one log land on one partition in append order.
type Kafka struct {
	writer messageWriter
}

// NewKafka returns a synchronous producer for topic.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (k *Kafka) Publish(ctx context.Context, ev Event) error {
	value, err := messageValue(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   messageKey(ev),
		Value: value,
		Time:  ev.Time,
	})
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
