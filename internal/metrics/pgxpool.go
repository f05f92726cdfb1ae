package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes ledger database pool statistics as gauges
// under the payments namespace.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	prometheus.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "payments",
			Name:      "pgxpool_acquired_conns",
			Help:      "Currently acquired connections in the ledger db pool",
		}, func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "payments",
			Name:      "pgxpool_max_conns",
			Help:      "Maximum connections in the ledger db pool",
		}, func() float64 {
			return float64(pool.Stat().MaxConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "payments",
			Name:      "pgxpool_total_conns",
			Help:      "Total connections in the ledger db pool",
		}, func() float64 {
			return float64(pool.Stat().TotalConns())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "payments",
			Name:      "pgxpool_idle_conns",
			Help:      "Idle connections in the ledger db pool",
		}, func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}
