// Package metrics provides observability for the election module.
// Tracks pipeline runs, created entities and policy skips.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the election module collectors.
type Metrics struct {
	PipelineRuns       *prometheus.CounterVec
	PipelineDuration   *prometheus.HistogramVec
	PoliticiansCreated *prometheus.CounterVec
	MembersCreated     *prometheus.CounterVec
	Skips              *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registerer.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all election collectors on reg. Tests pass a fresh
// prometheus.NewRegistry so suites do not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "polibase_pipeline_runs_total",
			Help: "Total pipeline runs by pipeline and outcome",
		}, []string{"pipeline", "status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "polibase_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"pipeline"}),
		PoliticiansCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "polibase_politicians_created_total",
			Help: "Politicians created during imports",
		}, []string{"pipeline"}),
		MembersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "polibase_election_members_created_total",
			Help: "Election members written during imports",
		}, []string{"pipeline"}),
		Skips: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "polibase_pipeline_skips_total",
			Help: "Candidates skipped by policy, by reason",
		}, []string{"pipeline", "reason"}),
	}
}

// ObserveRun records one finished pipeline run.
func (m *Metrics) ObserveRun(pipeline, status string, start time.Time) {
	m.PipelineRuns.WithLabelValues(pipeline, status).Inc()
	m.PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(start).Seconds())
}

// RecordImport adds the per-run entity and skip counters.
func (m *Metrics) RecordImport(pipeline string, politiciansCreated, membersCreated, skippedAmbiguous, skippedDuplicate int) {
	m.PoliticiansCreated.WithLabelValues(pipeline).Add(float64(politiciansCreated))
	m.MembersCreated.WithLabelValues(pipeline).Add(float64(membersCreated))
	m.Skips.WithLabelValues(pipeline, "ambiguous").Add(float64(skippedAmbiguous))
	m.Skips.WithLabelValues(pipeline, "duplicate").Add(float64(skippedDuplicate))
}
