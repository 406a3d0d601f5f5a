// internal/app/system/metrics/metrics.go

// Package metrics exposes prometheus counters for workflow outcomes and the
// /metrics handler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AssignmentsReconciled counts reconciliation passes, labeled by
	// whether the pass changed anything.
	AssignmentsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cams_assignments_reconciled_total",
		Help: "Completed assignment reconciliation passes per case.",
	}, []string{"changed"})

	// ConsolidationActions counts consolidation order decisions by status
	// (approved, rejected).
	ConsolidationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cams_consolidation_actions_total",
		Help: "Consolidation order decisions by resulting status.",
	}, []string{"status"})

	// WorkflowErrors counts workflow failures by module.
	WorkflowErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cams_workflow_errors_total",
		Help: "Workflow failures by module.",
	}, []string{"module"})
)

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
