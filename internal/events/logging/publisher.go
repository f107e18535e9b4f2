// Package logging provides an EventPublisher that only writes events to
// the log. It stands in for Kafka when no brokers are configured.
package logging

import (
	"context"

	"go.uber.org/zap"

	interfaces "github.com/finebot/penalty-ledger/internal/interfaces"
)

type Publisher struct {
	logger *zap.Logger
}

func NewPublisher(logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, topic string, key string, event any) error {
	p.logger.Info("ledger event",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Any("event", event))
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
