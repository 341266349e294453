package service

import "github.com/prometheus/client_golang/prometheus"

var (
	distributionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aid_distributions_total",
			Help: "Total distribution attempts by terminal outcome",
		},
		[]string{"outcome"},
	)

	restocksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aid_restocks_total",
			Help: "Total successful restock operations",
		},
	)

	inventoryLockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aid_inventory_lock_wait_seconds",
			Help:    "Time spent waiting for a per-key inventory lock",
			Buckets: prometheus.DefBuckets,
		},
	)

	rollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aid_reservation_rollbacks_total",
			Help: "Reservations rolled back after a failed log append",
		},
	)
)

func init() {
	prometheus.MustRegister(distributionsTotal)
	prometheus.MustRegister(restocksTotal)
	prometheus.MustRegister(inventoryLockWait)
	prometheus.MustRegister(rollbacksTotal)
}
