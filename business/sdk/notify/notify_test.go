package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jcpaschoal/lido/business/sdk/notify"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSender struct{ calls int }

func (f *failingSender) Send(ctx context.Context, evt notify.Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestNotifierSwallowsErrors(t *testing.T) {
	sender := &failingSender{}
	n := notify.New(logger.Discard(), sender)

	n.Notify(context.Background(), notify.Event{Type: notify.ReservationCreated})

	assert.Equal(t, 1, sender.calls)
}

func TestNotifierStampsTime(t *testing.T) {
	rec := &notify.Recorder{}
	n := notify.New(logger.Discard(), rec)

	n.Notify(context.Background(), notify.Event{Type: notify.PaymentConfirmed, ReservationID: uuid.New()})

	evts := rec.Events()
	require.Len(t, evts, 1)
	assert.False(t, evts[0].OccurredAt.IsZero())
	assert.Equal(t, []string{notify.PaymentConfirmed}, rec.Types())
}

func TestNilNotifier(t *testing.T) {
	var n *notify.Notifier
	assert.NotPanics(t, func() {
		n.Notify(context.Background(), notify.Event{Type: notify.ReservationCancelled})
	})
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "lido.reservation.created", notify.Subject("lido", notify.ReservationCreated))
	assert.Equal(t, "payment.refunded", notify.Subject("", notify.PaymentRefunded))
}
