// Package metrics exposes Prometheus instruments for migration routing,
// validation findings and critical-path length.
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/linebuild/internal/model"
)

// Metrics holds the registered instruments.
type Metrics struct {
	MigrationItems   *prometheus.CounterVec
	ValidationIssues *prometheus.CounterVec
	CriticalPath     prometheus.Histogram
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MigrationItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linebuild_migration_items_total",
			Help: "Legacy items migrated, by routing status.",
		}, []string{"status"}),
		ValidationIssues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "linebuild_validation_issues_total",
			Help: "Validation issues found, by kind and severity.",
		}, []string{"kind", "severity"}),
		CriticalPath: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "linebuild_critical_path_seconds",
			Help:    "Critical-path length of analyzed builds.",
			Buckets: []float64{60, 120, 300, 600, 900, 1200, 1800, 2700, 3600},
		}),
	}
}

// ObserveMigration counts one routed legacy item.
func (m *Metrics) ObserveMigration(status model.MigrationStatus) {
	if m == nil {
		return
	}
	m.MigrationItems.WithLabelValues(string(status)).Inc()
}

// ObserveIssues counts each issue by kind and severity.
func (m *Metrics) ObserveIssues(issues []model.ValidationIssue) {
	if m == nil {
		return
	}
	for _, iss := range issues {
		m.ValidationIssues.WithLabelValues(string(iss.Kind), string(iss.Severity)).Inc()
	}
}

// ObserveCriticalPath records a critical-path length.
func (m *Metrics) ObserveCriticalPath(seconds int) {
	if m == nil {
		return
	}
	m.CriticalPath.Observe(float64(seconds))
}
