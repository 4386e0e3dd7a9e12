package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	psychologyReports = "psychology_reports"

	// Report metrics
	reportTasksTotal     = "report_tasks_total"
	reportRenderDuration = "report_render_duration_seconds"
	reportWorkersBusy    = "report_workers_busy"

	// Program metrics
	programGenerationsTotal = "program_generations_total"
	documentConversions     = "document_conversions_total"

	// Labels
	modeLabel    = "mode"
	stateLabel   = "state"
	outcomeLabel = "outcome"
	kindLabel    = "kind"
)

/**
* Metrics definition
**/
var reportTasksTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: psychologyReports,
		Name:      reportTasksTotal,
		Help:      "number of report tasks by output mode and state",
	},
	[]string{modeLabel, stateLabel},
)

var reportRenderDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: psychologyReports,
		Name:      reportRenderDuration,
		Help:      "time spent running the report renderer",
		Buckets:   []float64{1, 2, 5, 10, 20, 40, 60},
	},
	[]string{modeLabel, outcomeLabel},
)

var reportWorkersBusyMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: psychologyReports,
		Name:      reportWorkersBusy,
		Help:      "number of report workers currently rendering",
	},
)

var programGenerationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: psychologyReports,
		Name:      programGenerationsTotal,
		Help:      "number of program generation requests by outcome (reused, merged, failed)",
	},
	[]string{outcomeLabel},
)

var documentConversionsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: psychologyReports,
		Name:      documentConversions,
		Help:      "number of uploaded documents normalized by kind and outcome",
	},
	[]string{kindLabel, outcomeLabel},
)

func IncreaseReportTasksMetric(mode, state string) {
	reportTasksTotalMetric.With(prometheus.Labels{modeLabel: mode, stateLabel: state}).Inc()
}

func ObserveReportRender(mode string, elapsed time.Duration, err error) {
	reportRenderDurationMetric.With(prometheus.Labels{modeLabel: mode, outcomeLabel: outcome(err)}).Observe(elapsed.Seconds())
}

func IncreaseBusyWorkers() {
	reportWorkersBusyMetric.Inc()
}

func DecreaseBusyWorkers() {
	reportWorkersBusyMetric.Dec()
}

func IncreaseProgramGenerationsMetric(result string) {
	programGenerationsTotalMetric.With(prometheus.Labels{outcomeLabel: result}).Inc()
}

func IncreaseDocumentConversionsMetric(kind string, err error) {
	documentConversionsMetric.With(prometheus.Labels{kindLabel: kind, outcomeLabel: outcome(err)}).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(reportTasksTotalMetric)
	prometheus.MustRegister(reportRenderDurationMetric)
	prometheus.MustRegister(reportWorkersBusyMetric)
	prometheus.MustRegister(programGenerationsTotalMetric)
	prometheus.MustRegister(documentConversionsMetric)
}
