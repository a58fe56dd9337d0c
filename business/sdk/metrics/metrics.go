// Package metrics holds the prometheus collectors updated by the business
// layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lido",
		Name:      "reservations_created_total",
		Help:      "Reservations successfully created.",
	})

	bookingConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lido",
		Name:      "booking_conflicts_total",
		Help:      "Reservation attempts rejected because the umbrella was already booked.",
	})

	reservationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lido",
		Name:      "reservation_transitions_total",
		Help:      "Reservation status changes by target status.",
	}, []string{"status"})

	paymentsConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lido",
		Name:      "payments_confirmed_total",
		Help:      "Payments moved to PAID by method.",
	}, []string{"method"})

	paymentsRefunded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lido",
		Name:      "payments_refunded_total",
		Help:      "Payments refunded.",
	})
)

// ReservationCreated counts a new reservation.
func ReservationCreated() {
	reservationsCreated.Inc()
	reservationTransitions.WithLabelValues("PENDING").Inc()
}

// BookingConflict counts a rejected overlapping reservation.
func BookingConflict() {
	bookingConflicts.Inc()
}

// ReservationTransition counts a status change.
func ReservationTransition(status string) {
	reservationTransitions.WithLabelValues(status).Inc()
}

// PaymentConfirmed counts a confirmed payment.
func PaymentConfirmed(method string) {
	paymentsConfirmed.WithLabelValues(method).Inc()
}

// PaymentRefunded counts a refund.
func PaymentRefunded() {
	paymentsRefunded.Inc()
}
