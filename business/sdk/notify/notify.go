// Package notify emits domain events to interested parties. Delivery is
// best effort: a failed send is logged and never reported to the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/foundation/logger"
)

// Set of event types.
const (
	ReservationCreated   = "reservation.created"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	ReservationCompleted = "reservation.completed"
	PaymentConfirmed     = "payment.confirmed"
	PaymentRefunded      = "payment.refunded"
)

// EventTypes lists every event type emitted by the system.
var EventTypes = []string{
	ReservationCreated,
	ReservationConfirmed,
	ReservationCancelled,
	ReservationCompleted,
	PaymentConfirmed,
	PaymentRefunded,
}

// Event describes a state change worth telling the customer about.
type Event struct {
	Type          string    `json:"type"`
	TenantID      uuid.UUID `json:"tenant_id"`
	UserID        uuid.UUID `json:"user_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	PaymentID     uuid.UUID `json:"payment_id"`
	BookingCode   string    `json:"booking_code,omitempty"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Sender delivers an event to a transport.
type Sender interface {
	Send(ctx context.Context, evt Event) error
}

// =============================================================================

// Notifier wraps a Sender so failures are logged instead of returned.
type Notifier struct {
	log     *logger.Logger
	sender  Sender
	timeout time.Duration
}

// New constructs a notifier for the specified sender.
func New(log *logger.Logger, sender Sender) *Notifier {
	return &Notifier{
		log:     log,
		sender:  sender,
		timeout: 2 * time.Second,
	}
}

// Notify sends the event. A nil Notifier drops the event.
func (n *Notifier) Notify(ctx context.Context, evt Event) {
	if n == nil || n.sender == nil {
		return
	}

	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.sender.Send(ctx, evt); err != nil {
		n.log.Error(ctx, "notify", "type", evt.Type, "reservation_id", evt.ReservationID, "ERROR", err)
	}
}

// =============================================================================

// LogSender writes events to the log.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender constructs a sender that only logs.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send implements the Sender interface.
func (s *LogSender) Send(ctx context.Context, evt Event) error {
	s.log.Info(ctx, "notify", "type", evt.Type, "tenant_id", evt.TenantID, "reservation_id", evt.ReservationID, "booking_code", evt.BookingCode, "status", evt.Status)
	return nil
}

// =============================================================================

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Send implements the Sender interface.
func (r *Recorder) Send(ctx context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, evt)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the types of the recorded events in order.
func (r *Recorder) Types() []string {
	evts := r.Events()

	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}
