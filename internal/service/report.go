package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

// ReportQueue is the part of the orchestrator the API talks to.
type ReportQueue interface {
	Enqueue(ctx context.Context, task report.Task) (string, error)
	Status(ctx context.Context, id string) (report.Poll, error)
}

type ReportService struct {
	store  store.Store
	queue  ReportQueue
	logger *log.StructuredLogger
}

func NewReportService(s store.Store, queue ReportQueue) *ReportService {
	return &ReportService{
		store:  s,
		queue:  queue,
		logger: log.NewDebugLogger("report_service"),
	}
}

// GenerateIdadiReport queues the final report of the patient and returns the task id.
func (rs *ReportService) GenerateIdadiReport(ctx context.Context, patientID uint) (string, error) {
	tracer := rs.logger.WithContext(ctx).Operation("generate_idadi_report").
		WithUint("patient_id", patientID).
		Build()

	if _, err := rs.store.Patient().Get(ctx, patientID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return "", NewErrPatientNotFound(patientID)
		}
		return "", err
	}

	task := report.NewTask(report.FinalReport, map[string]string{
		"id_patient": strconv.FormatUint(uint64(patientID), 10),
	}, report.ModePDF)

	id, err := rs.queue.Enqueue(ctx, task)
	if err != nil {
		tracer.Error(err).Log()
		return "", reportError(err)
	}

	tracer.Success().WithString("task_id", id).Log()
	return id, nil
}

func (rs *ReportService) Status(ctx context.Context, taskID string) (report.Poll, error) {
	poll, err := rs.queue.Status(ctx, taskID)
	if err != nil {
		return report.Poll{}, reportError(err)
	}
	return poll, nil
}
