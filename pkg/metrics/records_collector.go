package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"go.uber.org/zap"
)

type recordsCollector struct {
	store              store.Store
	totalPsychologists *prometheus.Desc
	totalPatients      *prometheus.Desc
	totalProgramPages  *prometheus.Desc
	totalGenerated     *prometheus.Desc
}

// RegisterRecordsCollector exposes row counts of the clinical records on every scrape.
func RegisterRecordsCollector(s store.Store) {
	prometheus.MustRegister(newRecordsCollector(s))
}

func newRecordsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_records_%s", psychologyReports, name)
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(fqName(name), help, nil, prometheus.Labels{})
	}

	return &recordsCollector{
		store:              s,
		totalPsychologists: desc("psychologists_total", "Total number of psychologists."),
		totalPatients:      desc("patients_total", "Total number of patients."),
		totalProgramPages:  desc("program_pages_total", "Total number of uploaded program pages, pdf and cover rows."),
		totalGenerated:     desc("generated_programs_total", "Total number of merged program documents."),
	}
}

func (c *recordsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalPsychologists
	ch <- c.totalPatients
	ch <- c.totalProgramPages
	ch <- c.totalGenerated
}

func (c *recordsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.store.Statistics(ctx)
	if err != nil {
		zap.S().Named("records_collector").Errorf("failed to collect records statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalPsychologists, prometheus.GaugeValue, float64(stats.Psychologists))
	ch <- prometheus.MustNewConstMetric(c.totalPatients, prometheus.GaugeValue, float64(stats.Patients))
	ch <- prometheus.MustNewConstMetric(c.totalProgramPages, prometheus.GaugeValue, float64(stats.ProgramPages))
	ch <- prometheus.MustNewConstMetric(c.totalGenerated, prometheus.GaugeValue, float64(stats.GeneratedPrograms))
}
