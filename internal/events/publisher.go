// Package events publishes failed best-effort calls to Kafka so that other
// systems can follow divergence between the downstream stores.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/logger"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTopic   = "rental-gateway.best-effort-failures"
	publishTimeout = 3 * time.Second
)

// messageWriter is the subset of the traced Kafka writer the publisher needs.
type messageWriter interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

type Options struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// FailurePublisher writes one message per failure, keyed by rental UID so that
// all failures of one rental land on the same partition in order.
type FailurePublisher struct {
	writer messageWriter
	topic  string
}

func NewFailurePublisher(opts Options, tp trace.TracerProvider) (*FailurePublisher, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	topic := opts.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	base := &kafka.Writer{
		Addr:                   kafka.TCP(opts.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	writer, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(topic),
				attribute.String("messaging.kafka.client_id", opts.ClientID),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka writer: %w", err)
	}
	return newFailurePublisher(writer, topic), nil
}

func newFailurePublisher(w messageWriter, topic string) *FailurePublisher {
	return &FailurePublisher{writer: w, topic: topic}
}

// PublishFailure satisfies the service layer's recorder signature.
func (p *FailurePublisher) PublishFailure(ctx context.Context, f *domain.BestEffortFailure) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode failure %s: %w", f.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(f.RentalUID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "step", Value: []byte(f.Step)},
			{Key: "operation", Value: []byte(f.Operation)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	logger.ExternalServiceCall("kafka", "publish", "topic", p.topic, "failure_id", f.ID)
	err = p.writer.WriteMessage(ctx, msg)
	logger.ExternalServiceResult("kafka", "publish", err, "topic", p.topic, "failure_id", f.ID)
	if err != nil {
		return fmt.Errorf("failed to publish failure %s: %w", f.ID, err)
	}
	return nil
}

func (p *FailurePublisher) Close() error {
	return p.writer.Close()
}
