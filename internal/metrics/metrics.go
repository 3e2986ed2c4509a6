// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventbooking"

// Registry holds every collector of the service.  A dedicated registry
// keeps tests free of the global default registerer.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Booking admission
var (
	// BookingsTotal counts committed booking writes by operation (create, update).
	BookingsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Committed booking writes by operation",
		},
		[]string{"operation"},
	)

	// AdmissionRejections counts bookings refused by the admission rules.
	// reason is one of: eligibility, capacity, ownership, room_not_found.
	AdmissionRejections = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_admission_rejections_total",
			Help:      "Booking requests rejected by admission control",
		},
		[]string{"reason"},
	)
)

// Payments
var (
	PaymentsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payments recorded",
		},
	)

	PaymentValueTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_value_total",
			Help:      "Sum of recorded payment values in currency units",
		},
	)
)

// Events
var EventsPublished = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Domain events handed to the broker by routing key and result",
	},
	[]string{"routing_key", "result"},
)
