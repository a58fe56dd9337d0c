package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/nats-io/nats.go"
)

// NATSConfig defines what is needed to connect to NATS.
type NATSConfig struct {
	URL           string
	Name          string
	SubjectPrefix string
}

// NATSSender publishes events on the subject <prefix>.<event type>.
type NATSSender struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSSender connects to the NATS server. The connection retries in the
// background so a broker outage at startup does not stop the service.
func NewNATSSender(log *logger.Logger, cfg NATSConfig) (*NATSSender, error) {
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn(ctx, "nats", "status", "disconnected", "ERROR", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info(ctx, "nats", "status", "reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error(ctx, "nats", "ERROR", err)
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	return &NATSSender{
		conn:   conn,
		prefix: cfg.SubjectPrefix,
	}, nil
}

// Send implements the Sender interface.
func (s *NATSSender) Send(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := s.conn.Publish(Subject(s.prefix, evt.Type), data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// Close drains the connection.
func (s *NATSSender) Close() error {
	return s.conn.Drain()
}

// Subject returns the subject an event type is published on.
func Subject(prefix string, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}
