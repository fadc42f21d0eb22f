package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes the bundle JSON keyed by job id, so every message for one
// job lands on the same partition.
type Kafka struct {
	w     messageWriter
	topic string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka sink: brokers and topic are required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Kafka{w: w, topic: topic}, nil
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Publish(ctx context.Context, b Bundle) (string, error) {
	msg, err := message(b)
	if err != nil {
		return "", err
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("kafka publish: %w", err)
	}
	return "kafka://" + k.topic + "/" + b.JobID, nil
}

func (k *Kafka) Close() error { return k.w.Close() }

func message(b Bundle) (kafka.Message, error) {
	data, err := encode(b)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(b.JobID),
		Value: data,
		Time:  b.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "accent", Value: []byte(b.Result.Accent)},
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "status", Value: []byte(status(b))},
		},
	}, nil
}

func status(b Bundle) string {
	if b.Result.Failed() {
		return "failed"
	}
	return "ok"
}
