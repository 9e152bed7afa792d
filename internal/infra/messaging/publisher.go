// Package messaging delivers outbox events to a message broker.
package messaging

import (
	"context"
	"log/slog"
	"sync"

	"coach-booking/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrNotConfirmed = errs.New("message not confirmed by broker")

// AMQPPublisher publishes to a durable topic exchange with publisher
// confirms. Publish is serialized because a channel is not goroutine safe.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errs.Wrap(err, "dial amqp")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "open amqp channel")
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "declare exchange")
	}

	if err := ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "enable publisher confirms")
	}

	return &AMQPPublisher{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         payload,
		DeliveryMode: amqp.Persistent,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, msg); err != nil {
		return errs.Wrap(err, "publish "+topic)
	}

	select {
	case confirmed := <-p.confirms:
		if !confirmed.Ack {
			return ErrNotConfirmed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		slog.Warn("failed to close amqp channel", "error", err)
	}
	return p.conn.Close()
}

// LogPublisher writes events to the log; used when no broker is configured.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	slog.Info("event published", "topic", topic, "payload", string(payload))
	return nil
}
