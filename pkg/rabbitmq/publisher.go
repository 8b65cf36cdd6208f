package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	pool      *ChannelPool
	queueName string
	timeout   time.Duration
}

func NewPublisher(pool *ChannelPool, queueName string) *Publisher {
	return &Publisher{
		pool:      pool,
		queueName: queueName,
		timeout:   5 * time.Second,
	}
}

// Publish sends a persistent JSON message to the queue through the default
// exchange. Waiting for a pooled channel counts against the publish timeout.
func (p *Publisher) Publish(ctx context.Context, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ch, err := p.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("get channel from pool: %w", err)
	}
	defer p.pool.Put(ch)

	err = ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			MessageId:    messageID,
			Timestamp:    time.Now(),
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queueName, err)
	}
	return nil
}
