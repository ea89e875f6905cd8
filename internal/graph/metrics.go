package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// nodeInits counts factory+interceptor runs.
	// Labels: result (success, error)
	nodeInits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appgraph",
		Subsystem: "node",
		Name:      "init_total",
		Help:      "Total node instantiations by result",
	}, []string{"result"})

	// nodeInitDuration measures a single node instantiation, interceptors included.
	nodeInitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "appgraph",
		Subsystem: "node",
		Name:      "init_duration_seconds",
		Help:      "Time to instantiate a node, interceptors included",
		Buckets:   []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	})

	// refreshes counts Refresh calls.
	// Labels: result (success, rolled_back, failed, rejected)
	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "appgraph",
		Name:      "refresh_total",
		Help:      "Total graph refreshes by result",
	}, []string{"result"})

	// releaseErrors counts failed node releases, rollbacks included.
	releaseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "appgraph",
		Name:      "release_errors_total",
		Help:      "Total failed node releases",
	})
)
