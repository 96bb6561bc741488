package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics captures health signals for the collection, index and downgrade
// jobs.
type JobMetrics struct {
	jobRuns      *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobErrors    *prometheus.CounterVec
	jobSkipped   *prometheus.CounterVec
	rowsWritten  *prometheus.CounterVec
	rowsSkipped  *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
}

var (
	jobMetricsOnce sync.Once
	jobMetrics     *JobMetrics
)

// Jobs returns the singleton job metrics registry.
func Jobs() *JobMetrics {
	jobMetricsOnce.Do(func() {
		jobMetrics = newJobMetrics(prometheus.DefaultRegisterer)
	})
	return jobMetrics
}

// ResetJobMetricsForTest resets the job metrics singleton for tests.
func ResetJobMetricsForTest() {
	jobMetricsOnce = sync.Once{}
	jobMetrics = nil
}

func newJobMetrics(registerer prometheus.Registerer) *JobMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &JobMetrics{
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Job runs by job name.",
		}, []string{"job"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "baupreis",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Job run duration by job name.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"job"}),
		jobErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "jobs",
			Name:      "errors_total",
			Help:      "Run-fatal job errors by job name.",
		}, []string{"job"}),
		jobSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "jobs",
			Name:      "skipped_runs_total",
			Help:      "Job runs skipped because a previous run still holds the lock.",
		}, []string{"job"}),
		rowsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "collector",
			Name:      "prices_written_total",
			Help:      "Price points persisted by source.",
		}, []string{"source"}),
		rowsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "collector",
			Name:      "prices_skipped_total",
			Help:      "Merged quotes skipped by reason.",
		}, []string{"reason"}),
		sourceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "baupreis",
			Subsystem: "collector",
			Name:      "source_errors_total",
			Help:      "Adapter fetch failures by source.",
		}, []string{"source"}),
	}
}

func (m *JobMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *JobMetrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *JobMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *JobMetrics) IncJobSkipped(job string) {
	if m == nil {
		return
	}
	m.jobSkipped.WithLabelValues(job).Inc()
}

func (m *JobMetrics) AddPricesWritten(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.WithLabelValues(source).Add(float64(n))
}

func (m *JobMetrics) IncPriceSkipped(reason string) {
	if m == nil {
		return
	}
	m.rowsSkipped.WithLabelValues(reason).Inc()
}

func (m *JobMetrics) IncSourceError(source string) {
	if m == nil {
		return
	}
	m.sourceErrors.WithLabelValues(source).Inc()
}
