package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSender publishes events to a durable queue per event type through
// the default exchange.
type AMQPSender struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	prefix string
}

// NewAMQPSender dials the broker and declares one durable queue per event
// type. Declaring is idempotent.
func NewAMQPSender(url string, queuePrefix string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel: %w", err)
	}

	for _, typ := range EventTypes {
		if _, err := ch.QueueDeclare(Subject(queuePrefix, typ), true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("queue declare[%s]: %w", typ, err)
		}
	}

	return &AMQPSender{
		conn:   conn,
		ch:     ch,
		prefix: queuePrefix,
	}, nil
}

// Send implements the Sender interface.
func (s *AMQPSender) Send(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         evt.Type,
		Body:         body,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ch.PublishWithContext(ctx, "", Subject(s.prefix, evt.Type), false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Close closes the channel and the connection.
func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ch.Close(); err != nil {
		s.conn.Close()
		return fmt.Errorf("channel close: %w", err)
	}

	return s.conn.Close()
}
