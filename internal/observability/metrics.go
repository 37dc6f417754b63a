package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queryCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minutes_service",
		Subsystem: "engine",
		Name:      "queries_total",
		Help:      "Aggregation queries served, by operation.",
	}, []string{"operation"})
	eventPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minutes_service",
		Subsystem: "persistence",
		Name:      "last_event_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent event written to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(queryCounter, eventPersistGauge)
}

// RecordQuery counts a served aggregation query.
func RecordQuery(operation string) {
	queryCounter.WithLabelValues(operation).Inc()
}

// RecordEventPersisted updates the persistence watermark gauge.
func RecordEventPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	eventPersistGauge.Set(float64(ts.Unix()))
}
