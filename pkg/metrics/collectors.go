package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts validated records per entity kind.
	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "allocat",
		Name:      "validations_total",
		Help:      "Number of records validated, by entity kind.",
	}, []string{"kind"})

	// FindingsTotal counts emitted findings per entity kind and severity.
	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "allocat",
		Name:      "validation_findings_total",
		Help:      "Number of validation findings emitted, by entity kind and severity.",
	}, []string{"kind", "severity"})

	// RuleFaultsTotal counts fail-open rule evaluation faults.
	RuleFaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "allocat",
		Name:      "rule_faults_total",
		Help:      "Number of rule evaluations that faulted and were treated as passed.",
	}, []string{"kind"})
)
