package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics publishes gauges over the job store's connection
// pool. Call it once per process; a second registration panics.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	poolGauge := func(name, help string, value func() float64) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, value)
	}

	prometheus.MustRegister(
		poolGauge("pgxpool_acquired_conns", "Number of currently acquired connections in the pool", func() float64 {
			return float64(pool.Stat().AcquiredConns())
		}),
		poolGauge("pgxpool_max_conns", "Maximum number of connections in the pool", func() float64 {
			return float64(pool.Stat().MaxConns())
		}),
		poolGauge("pgxpool_total_conns", "Total number of connections in the pool", func() float64 {
			return float64(pool.Stat().TotalConns())
		}),
		poolGauge("pgxpool_idle_conns", "Number of idle connections in the pool", func() float64 {
			return float64(pool.Stat().IdleConns())
		}),
	)
}
