package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking queue operations by kind and outcome",
		},
		[]string{"operation", "showtime_id", "status"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "booking_queue_depth",
			Help: "Pending operations per showtime queue",
		},
		[]string{"showtime_id"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_operation_duration_seconds",
			Help:    "Time spent executing a booking operation",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"operation"},
	)

	holdsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holds_expired_total",
			Help: "Holds reclaimed by the expirer sweep",
		},
	)

	heldSeatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seat_hold_duration_seconds",
			Help:    "How long seats stay held before commit or release",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

// Monitor records admission-control metrics. All methods are safe on a
// nil receiver so wiring stays optional in tests.
type Monitor struct{}

func NewMonitor() *Monitor { return &Monitor{} }

func (m *Monitor) TrackBookingOperation(operation, showtimeID, outcome string) {
	if m == nil {
		return
	}
	bookingOperations.WithLabelValues(operation, showtimeID, outcome).Inc()
}

func (m *Monitor) SetQueueDepth(showtimeID string, depth int) {
	if m == nil {
		return
	}
	queueDepth.WithLabelValues(showtimeID).Set(float64(depth))
}

func (m *Monitor) TrackOperationDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Monitor) TrackHoldExpired() {
	if m == nil {
		return
	}
	holdsExpired.Inc()
}

func (m *Monitor) TrackHoldDuration(d time.Duration) {
	if m == nil {
		return
	}
	heldSeatDuration.Observe(d.Seconds())
}
