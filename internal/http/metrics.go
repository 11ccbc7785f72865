package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflow_mutations_total",
		Help: "Ledger mutations applied, by operation.",
	}, []string{"op"})

	mutationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflow_mutation_failures_total",
		Help: "Ledger mutations rejected by a guard, by operation.",
	}, []string{"op"})

	importsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashflow_csv_imports_total",
		Help: "CSV imports applied.",
	})

	exportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashflow_csv_exports_total",
		Help: "CSV exports served.",
	})
)
