package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sharedspace/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// bindingKey routes every booking event kind to the notification queue.
const bindingKey = "booking.*"

type RabbitMQClient struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    amqp.Queue
}

// New connects and declares a durable topic exchange with the queue bound to it.
func New(urlForConn, exchange, queueName string) (*RabbitMQClient, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(urlForConn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	closeAll := func() {
		ch.Close()
		conn.Close()
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("%s: declare exchange: %w", op, err)
	}

	q, err := ch.QueueDeclare(
		queueName, true, false, false, false, nil,
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("%s: declare queue: %w", op, err)
	}

	if err := ch.QueueBind(q.Name, bindingKey, exchange, false, nil); err != nil {
		closeAll()
		return nil, fmt.Errorf("%s: bind queue: %w", op, err)
	}

	return &RabbitMQClient{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		queue:    q,
	}, nil
}

// Publish sends the event with its kind as the routing key.
func (r *RabbitMQClient) Publish(ctx context.Context, event models.BookingEvent) error {
	const op = "rabbitmq.Publish"

	msg, err := publishing(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.channel.PublishWithContext(ctx, r.exchange, event.Kind, false, false, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func publishing(event models.BookingEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}

	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Kind,
		MessageId:    event.TransactionID + ":" + event.Kind,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
	}, nil
}

// StartReading consumes the queue until ctx is done. Messages the handler
// rejects are dropped rather than redelivered.
func (r *RabbitMQClient) StartReading(ctx context.Context, handler func([]byte) error) error {
	const op = "rabbitmq.StartReading"

	msgs, err := r.channel.ConsumeWithContext(
		ctx,
		r.queue.Name,
		"",    // consumer name
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := handler(msg.Body); err != nil {
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() {
	_ = r.channel.Close()
	_ = r.conn.Close()
}
