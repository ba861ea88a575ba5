// Package metrics holds the Prometheus collectors shared by the client core and the server.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "offsync"

var SyncCycles = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "cycles",
}, []string{"result"})

var SyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "duration_seconds",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
}, []string{"result"})

var PatchesApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "patches",
}, []string{"outcome"})

var QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "queue",
	Name:      "depth",
})

var QueueDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "queue",
	Name:      "deliveries",
}, []string{"result"})

var QuotaUsageBytes = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "quota",
	Name:      "usage_bytes",
})

var QuotaEvictedBytes = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "quota",
	Name:      "evicted_bytes",
})

var QuotaResidualBytes = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "quota",
	Name:      "residual_bytes",
})

var ServerPatches = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "server",
	Name:      "patches",
}, []string{"outcome"})

var ServerOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "server",
	Name:      "operations",
}, []string{"outcome"})

// Collectors returns every collector of the package
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		SyncCycles,
		SyncDuration,
		PatchesApplied,
		QueueDepth,
		QueueDeliveries,
		QuotaUsageBytes,
		QuotaEvictedBytes,
		QuotaResidualBytes,
		ServerPatches,
		ServerOperations,
	}
}

// Register registers all collectors, ignoring ones already registered with reg
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
