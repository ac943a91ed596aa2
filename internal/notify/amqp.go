// Package notify publishes cache change events to a message broker so other
// processes can react to dashboard refreshes without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/finsight/internal/model"
)

const publishTimeout = 5 * time.Second

// Event is the message body for one cache change.
type Event struct {
	Kind      string      `json:"kind"`
	Key       string      `json:"key,omitempty"`
	State     string      `json:"state"`
	Message   string      `json:"message,omitempty"`
	Records   int         `json:"records"`
	Stats     model.Stats `json:"stats"`
	FetchedAt time.Time   `json:"fetched_at"`
	Timestamp time.Time   `json:"timestamp"`
}

// RoutingKey is "cache.<kind>", so consumers can bind to a subset.
func (e Event) RoutingKey() string {
	return "cache." + e.Kind
}

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends events to a topic exchange.
type Publisher struct {
	conn     *amqp091.Connection
	ch       channel
	exchange string
	log      *logrus.Logger
}

// Dial connects to url and declares exchange as a durable topic exchange.
func Dial(url, exchange string, log *logrus.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, log)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *logrus.Logger) (*Publisher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{ch: ch, exchange: exchange, log: log}, nil
}

// Publish sends ev. Events are transient: a missed refresh notice is
// superseded by the next one.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		p.exchange,      // exchange
		ev.RoutingKey(), // routing key
		false,           // mandatory
		false,           // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    ev.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"exchange": p.exchange,
		"key":      ev.RoutingKey(),
	}).Debug("published cache event")
	return nil
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
