package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

// (POST /api/v1/idadi)
func (h *ServiceHandler) CreateIdadi(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.IdadiCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	idadi, err := h.idadiSrv.Create(r.Context(), mappers.IdadiFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.IdadiToApi(*idadi))
}

// (GET /api/v1/idadi/{id_patient})
func (h *ServiceHandler) GetIdadiByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_patient")
	if err != nil {
		writeError(w, r, err)
		return
	}

	idadi, err := h.idadiSrv.GetByPatient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.IdadiToApi(*idadi))
}

// (PUT /api/v1/idadi)
func (h *ServiceHandler) UpdateIdadi(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.IdadiUpdate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	current, err := h.idadiSrv.GetByPatient(r.Context(), form.IdPatient)
	if err != nil {
		writeError(w, r, err)
		return
	}

	idadi, err := h.idadiSrv.Update(r.Context(), current.ID, mappers.IdadiUpdateFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.IdadiToApi(*idadi))
}

// (DELETE /api/v1/idadi/{id})
func (h *ServiceHandler) DeleteIdadi(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.idadiSrv.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}

// (GET /api/v1/idadi_domains)
func (h *ServiceHandler) ListIdadiDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.idadiSrv.ListDomains(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.IdadiDomainListToApi(domains))
}

// (POST /api/v1/idadi/report/generate/{id_patient})
func (h *ServiceHandler) GenerateIdadiReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id_patient")
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := log.NewDebugLogger("report_handler").WithContext(r.Context()).
		Operation("generate_idadi_report").
		WithUint("patient_id", id).
		Build()

	taskID, err := h.reportSrv.GenerateIdadiReport(r.Context(), id)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}

	logger.Success().WithString("task_id", taskID).Log()

	respond(w, r, http.StatusAccepted, v1alpha1.ReportTask{TaskId: taskID})
}

type ReportStatusReply struct {
	v1alpha1.ReportStatus
}

func (s ReportStatusReply) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, reportStatusCode(report.Status(s.Status)))
	return nil
}

func reportStatusCode(status report.Status) int {
	switch status {
	case report.StatusNotFound:
		return http.StatusNotFound
	case report.StatusProcessing:
		return http.StatusAccepted
	case report.StatusConsumed:
		return http.StatusGone
	default:
		return http.StatusOK
	}
}

// (GET /api/v1/idadi/report/status/{task_id})
func (h *ServiceHandler) GetReportStatus(w http.ResponseWriter, r *http.Request) {
	poll, err := h.reportSrv.Status(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_ = render.Render(w, r, ReportStatusReply{ReportStatus: mappers.ReportStatusToApi(poll)})
}
