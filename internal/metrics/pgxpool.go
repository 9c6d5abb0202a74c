package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// StatSource is anything that reports pgx pool statistics. *pgxpool.Pool satisfies it.
type StatSource interface {
	Stat() *pgxpool.Stat
}

// RegisterPgxPoolMetrics exposes the query pool's connection usage under the
// cafe_db_pool namespace. The LISTEN connection of the notify relay is not
// part of the pool and is reported by the relay itself.
func RegisterPgxPoolMetrics(reg prometheus.Registerer, pool StatSource) {
	gauge := func(name, help string, value func(s *pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cafe",
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(pool.Stat()) })
	}
	counter := func(name, help string, value func(s *pgxpool.Stat) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(pool.Stat()) })
	}

	reg.MustRegister(
		gauge("acquired_conns", "Connections currently checked out of the pool.",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
		gauge("idle_conns", "Idle connections in the pool.",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
		gauge("total_conns", "Connections currently open.",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
		gauge("max_conns", "Configured maximum pool size.",
			func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
		counter("acquires_total", "Successful connection acquires.",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
		counter("empty_acquires_total", "Acquires that had to wait for a free connection.",
			func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
		counter("acquire_wait_seconds_total", "Time spent waiting for connections.",
			func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
	)
}
