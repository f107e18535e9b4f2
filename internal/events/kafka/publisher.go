package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
)

// Publisher writes ledger events as JSON, keyed by account name so that
// every event for one account lands on the same partition.
type Publisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// DefaultWriteTimeout bounds one Publish call, broker lookup included.
const DefaultWriteTimeout = 2 * time.Second

type Option func(*Publisher)

// WithWriteTimeout overrides DefaultWriteTimeout. Non-positive values are ignored.
func WithWriteTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPublisher(brokers []string, opts ...Option) *Publisher {
	p := &Publisher{timeout: DefaultWriteTimeout}
	for _, opt := range opts {
		opt(p)
	}

	// one event per command, so don't sit on kafka-go's 1s batch window
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           5 * time.Millisecond,
		WriteTimeout:           p.timeout,
		ReadTimeout:            p.timeout,
		MaxAttempts:            3,
		RequiredAcks:           kafka.RequireOne,
	}
	return p
}

func (p *Publisher) Publish(ctx context.Context, topic string, key string, event any) error {
	msg, err := message(topic, key, event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func message(topic, key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if typed, ok := event.(interface{ EventType() string }); ok {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "type", Value: []byte(typed.EventType())})
	}
	return msg, nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
