// Package queue publishes guarantee lifecycle events to RabbitMQ. Errors
// are logged and returned so callers can ignore failures without
// interrupting the main request flow.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const eventQueueName = "guarantee.events"

// Publisher delivers lifecycle events. An empty URL disables publishing.
type Publisher struct {
	url string
	log *logrus.Logger
}

func NewPublisher(url string, log *logrus.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish sends one event to the guarantee.events queue. The queue is
// declared durable and messages are persistent. Any error is logged and
// returned; callers treat publishing as best-effort.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logError("dial failed", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logError("channel open failed", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(eventQueueName, true, false, false, false, nil); err != nil {
		p.logError("queue declare failed", err)
		return err
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logError("marshal event failed", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", eventQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logError("publish failed", err)
		return err
	}
	return nil
}

func (p *Publisher) logError(msg string, err error) {
	p.log.WithField("module", "queue").Warnf("rabbitmq: %s: %v", msg, err)
}
