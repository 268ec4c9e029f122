package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goticket_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goticket_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goticket_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"result"},
	)

	PaymentVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goticket_payment_verifications_total",
			Help: "Payment verifications by outcome",
		},
		[]string{"result"},
	)

	ShowConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goticket_show_conflicts_total",
			Help: "Show scheduling attempts rejected for overlapping another show",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goticket_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	BookingEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goticket_booking_events_published_total",
			Help: "Booking events handed to the broker by outcome",
		},
		[]string{"result"},
	)
)
