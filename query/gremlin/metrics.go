package gremlin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mCompileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gremsql_compile_total",
		Help: "Number of compiled traversals.",
	}, []string{"result"})
	mCompileSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gremsql_compile_seconds",
		Help:    "Time to compile a traversal.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
	mCompileSteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gremsql_compile_steps",
		Help: "Number of compiled steps, including steps of nested traversals.",
	})
)
