// Package amqp publishes and consumes the backend's notification events:
// password-reset requests for the mailer and transaction audit events.
// Publishing is best effort; a broker outage never fails a user request.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key, direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishPasswordReset publishes a reset request for the mailer worker.
func (c *Client) PublishPasswordReset(ctx context.Context, msg *PasswordResetMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, TypePasswordReset, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published password reset message", "message_id", msg.MessageID)
	return nil
}

// PublishTransactionEvent publishes a ledger audit event.
func (c *Client) PublishTransactionEvent(ctx context.Context, msg *TransactionEventMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := c.publish(ctx, TypeTransactionEvent, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction event",
		"message_id", msg.MessageID,
		"action", msg.Action,
		"transaction_id", msg.TransactionID)
	return nil
}

func (c *Client) publish(ctx context.Context, msgType string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Type:         msgType,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ConsumeEvents delivers queue messages to the matching handler until ctx is
// cancelled. Messages that fail to decode are rejected without requeue;
// handler failures are requeued.
func (c *Client) ConsumeEvents(
	ctx context.Context,
	onReset func(context.Context, *PasswordResetMessage) error,
	onTransaction func(context.Context, *TransactionEventMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer
		false, // auto-ack off, we ack manually
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			var handlerErr error
			switch delivery.Type {
			case TypePasswordReset:
				msg, err := PasswordResetMessageFromJSON(delivery.Body)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to decode password reset message", "error", err)
					_ = delivery.Nack(false, false) // reject, don't requeue
					continue
				}
				handlerErr = onReset(ctx, msg)
			case TypeTransactionEvent:
				msg, err := TransactionEventMessageFromJSON(delivery.Body)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to decode transaction event", "error", err)
					_ = delivery.Nack(false, false)
					continue
				}
				handlerErr = onTransaction(ctx, msg)
			default:
				slog.WarnContext(ctx, "Unknown message type", "type", delivery.Type)
				_ = delivery.Nack(false, false)
				continue
			}

			if handlerErr != nil {
				slog.ErrorContext(ctx, "Failed to handle event",
					"error", handlerErr, "type", delivery.Type)
				_ = delivery.Nack(false, true) // requeue for retry
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
