package reporting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	traversalTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reporting",
		Subsystem: "structure",
		Name:      "requests_total",
		Help:      "Total number of reporting structure computations broken down by result.",
	}, []string{"result"})

	traversalNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reporting",
		Subsystem: "structure",
		Name:      "nodes_visited",
		Help:      "Number of employees visited per reporting structure traversal, root included.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	traversalLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reporting",
		Subsystem: "structure",
		Name:      "latency_seconds",
		Help:      "Latency distribution for loading and counting a reporting structure.",
		Buckets:   prometheus.DefBuckets,
	})
)

const (
	resultFound    = "found"
	resultNotFound = "not_found"
	resultError    = "error"
)
