package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dimitrije/internal-ops/internal/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

type deadLetterer interface {
	PublishToDLQ(ctx context.Context, routingKey, messageID string, body []byte, reason string) error
}

type retryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// QueueOptions describes the queue a consumer reads from. An exclusive queue
// is server-named and disappears with the connection; it suits fan-out
// listeners such as API replicas.
type QueueOptions struct {
	Name       string
	RoutingKey string
	Exclusive  bool
}

type Consumer struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	queue      string
	routingKey string
	handler    MessageHandler
	dlq        deadLetterer
	retries    retryTracker
	maxRetries int64
	logger     *zap.Logger
}

func NewConsumer(url string, opts QueueOptions, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Consumer{conn: conn, channel: ch, routingKey: opts.RoutingKey, logger: logger}
	if err := c.declare(opts); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue),
		zap.String("exchange", ExchangeName),
	)
	return c, nil
}

func (c *Consumer) declare(opts QueueOptions) error {
	if err := declareExchanges(c.channel); err != nil {
		return err
	}

	name, durable := opts.Name, true
	if opts.Exclusive {
		name, durable = "", false
	}
	q, err := c.channel.QueueDeclare(name, durable, opts.Exclusive, opts.Exclusive, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := c.channel.QueueBind(q.Name, opts.RoutingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.queue = q.Name

	if !opts.Exclusive {
		if err := declareDLQ(c.channel, opts.RoutingKey); err != nil {
			return err
		}
	}
	return c.channel.Qos(1, 0, false)
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// SetFailurePolicy enables dead-lettering. Messages failing with a Permanent
// error, or failing maxRetries times, go to the DLQ and are acked.
func (c *Consumer) SetFailurePolicy(dlq deadLetterer, retries retryTracker, maxRetries int64) {
	c.dlq = dlq
	c.retries = retries
	c.maxRetries = maxRetries
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Consume blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context) error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, msg)
		}
	}
}

// handle guarantees every delivery is acked, requeued or dead-lettered.
func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	log := c.logger.With(
		zap.String("routing_key", msg.RoutingKey),
		zap.String("message_id", msg.MessageId),
	)

	err := c.invoke(ctx, msg.Body)
	switch {
	case err == nil:
		c.settle(log, "ack", msg.Ack(false))
		c.resetRetries(ctx, msg)
	case IsPermanent(err):
		log.Error("Handler failed permanently", zap.Error(err))
		c.deadLetter(ctx, log, msg, err)
	case c.exhausted(ctx, log, msg):
		log.Error("Handler failed, retries exhausted", zap.Error(err))
		c.deadLetter(ctx, log, msg, err)
	default:
		log.Warn("Handler failed, requeueing", zap.Error(err))
		c.settle(log, "requeue", msg.Nack(false, true))
	}
}

func (c *Consumer) invoke(ctx context.Context, body []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return c.handler(ctx, body)
}

func (c *Consumer) exhausted(ctx context.Context, log *zap.Logger, msg amqp.Delivery) bool {
	if c.retries == nil || msg.MessageId == "" {
		return false
	}
	count, err := c.retries.IncrementAndGet(ctx, FormatRetryKey(c.routingKey, msg.MessageId))
	if err != nil {
		log.Warn("Retry counter unavailable", zap.Error(err))
		return false
	}
	return count >= c.maxRetries
}

func (c *Consumer) resetRetries(ctx context.Context, msg amqp.Delivery) {
	if c.retries == nil || msg.MessageId == "" {
		return
	}
	_ = c.retries.Reset(ctx, FormatRetryKey(c.routingKey, msg.MessageId))
}

func (c *Consumer) deadLetter(ctx context.Context, log *zap.Logger, msg amqp.Delivery, cause error) {
	if c.dlq == nil {
		c.settle(log, "drop", msg.Nack(false, false))
		return
	}
	if err := c.dlq.PublishToDLQ(ctx, c.routingKey, msg.MessageId, msg.Body, cause.Error()); err != nil {
		log.Error("Failed to dead-letter message, requeueing", zap.Error(err))
		c.settle(log, "requeue", msg.Nack(false, true))
		return
	}
	c.resetRetries(ctx, msg)
	c.settle(log, "dead_letter", msg.Ack(false))
}

func (c *Consumer) settle(log *zap.Logger, result string, err error) {
	metrics.IncrementJobsConsumed(c.routingKey, result)
	if err != nil {
		log.Error("Failed to settle message", zap.String("result", result), zap.Error(err))
	}
}
