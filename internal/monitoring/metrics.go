// Package monitoring exposes Prometheus collectors for the order and
// inventory workflows.  Counters are package-level and registered via
// promauto; the /metrics endpoint is wired in the router.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_operations_total",
			Help: "Total order operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	ticketsReserved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_reserved_total",
			Help: "Total ticket units reserved from the inventory ledger",
		},
	)

	ticketsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_released_total",
			Help: "Total ticket units released back to the inventory ledger",
		},
	)

	capacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capacity_rejections_total",
			Help: "Total purchase attempts rejected for insufficient stock",
		},
	)

	ticketScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_scans_total",
			Help: "Total ticket scan attempts by result",
		},
		[]string{"result"},
	)
)

// TrackOrderOperation records one order operation and its outcome
// ("ok" or "error").
func TrackOrderOperation(operation, status string) {
	orderOperations.WithLabelValues(operation, status).Inc()
}

// TrackReserved records n units successfully reserved.
func TrackReserved(n int) {
	ticketsReserved.Add(float64(n))
}

// TrackReleased records n units released back to a pool.
func TrackReleased(n int) {
	ticketsReleased.Add(float64(n))
}

// TrackCapacityRejection records a purchase rejected for insufficient
// stock.
func TrackCapacityRejection() {
	capacityRejections.Inc()
}

// TrackScan records a scan attempt result ("used", "rejected" or
// "not_found").
func TrackScan(result string) {
	ticketScans.WithLabelValues(result).Inc()
}
