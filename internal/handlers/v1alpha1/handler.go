package v1alpha1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/validator"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/pkg/requestid"
	"go.uber.org/zap"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Services groups the services exposed over http.
type Services struct {
	Psychologists  *service.PsychologistService
	Patients       *service.PatientService
	PatientRecords *service.PatientRecordService
	Pti            *service.PtiService
	Idadi          *service.IdadiService
	Reports        *service.ReportService
	Programs       *service.ProgramService
}

type ServiceHandler struct {
	psychologistSrv  *service.PsychologistService
	patientSrv       *service.PatientService
	patientRecordSrv *service.PatientRecordService
	ptiSrv           *service.PtiService
	idadiSrv         *service.IdadiService
	reportSrv        *service.ReportService
	programSrv       *service.ProgramService
	validator        *validator.Validator
	uploadLimit      int64
}

func NewServiceHandler(services Services, uploadLimit int64) *ServiceHandler {
	return &ServiceHandler{
		psychologistSrv:  services.Psychologists,
		patientSrv:       services.Patients,
		patientRecordSrv: services.PatientRecords,
		ptiSrv:           services.Pti,
		idadiSrv:         services.Idadi,
		reportSrv:        services.Reports,
		programSrv:       services.Programs,
		validator:        validator.NewValidator(validator.NewDefaultValidationRules()...),
		uploadLimit:      uploadLimit,
	}
}

// RegisterRoutes mounts the api under /api/v1 and the health probe at the root.
func (h *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/psychologists", func(r chi.Router) {
			r.Get("/", h.ListPsychologists)
			r.Post("/", h.CreatePsychologist)
			r.Get("/{id}", h.GetPsychologist)
			r.Put("/{id}", h.UpdatePsychologist)
			r.Delete("/{id}", h.DeletePsychologist)
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.ListPatients)
			r.Post("/", h.CreatePatient)
			r.Get("/from_psychologist/{id}", h.ListPatientsByPsychologist)
			r.Post("/upload/{id}", h.UploadPatientPhoto)
			r.Get("/{id}", h.GetPatient)
			r.Put("/{id}", h.UpdatePatient)
			r.Delete("/{id}", h.DeletePatient)
		})

		r.Route("/patient_records", func(r chi.Router) {
			r.Post("/", h.CreatePatientRecord)
			r.Get("/from_patient/{id}", h.GetPatientRecordByPatient)
			r.Get("/{id}", h.GetPatientRecord)
			r.Put("/{id}", h.UpdatePatientRecord)
			r.Delete("/{id}", h.DeletePatientRecord)
		})

		r.Route("/pti", func(r chi.Router) {
			r.Get("/", h.ListPti)
			r.Post("/", h.CreatePti)
			r.Post("/full_insert", h.FullInsertPti)
			r.Get("/from_patient/{id}", h.GetPtiByPatient)
			r.Get("/{id}", h.GetPti)
			r.Delete("/{id}", h.DeletePti)
		})

		r.Route("/stimulus_area", func(r chi.Router) {
			r.Get("/", h.ListStimulusAreas)
			r.Post("/", h.CreateStimulusArea)
			r.Get("/from_pti/{id}", h.ListStimulusAreasFromPti)
			r.Get("/{id}", h.GetStimulusArea)
			r.Put("/{id}", h.RenameStimulusArea)
			r.Delete("/{id}", h.DeleteStimulusArea)
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", h.ListTopics)
			r.Post("/", h.CreateTopic)
			r.Get("/from_stimulus_area/{id}", h.ListTopicsFromStimulusArea)
			r.Get("/{id}", h.GetTopic)
			r.Put("/{id}", h.RenameTopic)
			r.Delete("/{id}", h.DeleteTopic)
		})

		r.Route("/subtopics", func(r chi.Router) {
			r.Get("/", h.ListSubtopics)
			r.Post("/", h.CreateSubtopic)
			r.Get("/from_topic/{id}", h.ListSubtopicsFromTopic)
			r.Get("/{id}", h.GetSubtopic)
			r.Put("/{id}", h.RenameSubtopic)
			r.Delete("/{id}", h.DeleteSubtopic)
		})

		r.Route("/idadi", func(r chi.Router) {
			r.Post("/", h.CreateIdadi)
			r.Put("/", h.UpdateIdadi)
			r.Get("/{id_patient}", h.GetIdadiByPatient)
			r.Delete("/{id}", h.DeleteIdadi)
			r.Post("/report/generate/{id_patient}", h.GenerateIdadiReport)
			r.Get("/report/generate/{id_patient}", h.GenerateIdadiReport)
			r.Get("/report/status/{task_id}", h.GetReportStatus)
		})
		r.Get("/idadi_domains", h.ListIdadiDomains)
		r.Get("/idadi-domains", h.ListIdadiDomains)

		r.Route("/programs", func(r chi.Router) {
			r.Get("/{id}", h.ListPrograms)
			r.Post("/upload/image/{id}", h.UploadProgramImages)
			r.Post("/upload/image-link/{id}", h.UploadProgramImageLinks)
			r.Post("/upload/pdf/{id}", h.UploadProgramDocuments)
			r.Post("/generate/{id}", h.GenerateProgram)
			r.Post("/duplicate/{id}", h.DuplicateProgram)
			r.Put("/reorder/{id}", h.ReorderPrograms)
			r.Delete("/{id}", h.DeleteProgram)
		})
	})
}

func respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func noContent(w http.ResponseWriter, r *http.Request) {
	render.NoContent(w, r)
}

// errorStatus maps service errors onto http status codes.
func errorStatus(err error) int {
	var (
		notFound   *service.ErrResourceNotFound
		conflict   *service.ErrConflict
		badRequest *service.ErrBadRequest
		empty      *service.ErrEmptyInput
		invalid    *validator.ErrInvalidForm
		conversion *service.ErrConversionFailed
		submission *service.ErrTaskSubmission
		timeout    *service.ErrExternalProcessTimeout
		storage    *service.ErrStorage
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &badRequest), errors.As(err, &empty), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &conversion):
		return http.StatusUnprocessableEntity
	case errors.As(err, &submission):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &storage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.S().Named("handlers").Errorw("request failed", "path", r.URL.Path, "error", err)
		message = http.StatusText(status)
	}

	body := v1alpha1.Error{Message: message}
	if id := requestid.FromRequest(r); id != "" {
		body.RequestId = &id
	}

	render.Status(r, status)
	render.JSON(w, r, body)
}

func pathID(r *http.Request, key string) (uint, error) {
	raw := chi.URLParam(r, key)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, service.NewErrBadRequest("invalid %s %q", key, raw)
	}
	return uint(id), nil
}

// queryID reads an optional numeric query parameter.
func queryID(r *http.Request, key string) (*uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, service.NewErrBadRequest("invalid %s %q", key, raw)
	}
	v := uint(id)
	return &v, nil
}

func pagination(r *http.Request) (skip, limit int, err error) {
	query := r.URL.Query()
	skip, limit = 0, defaultLimit

	if raw := query.Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			return 0, 0, service.NewErrBadRequest("invalid skip %q", raw)
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 || limit > maxLimit {
			return 0, 0, service.NewErrBadRequest("invalid limit %q", raw)
		}
	}
	return skip, limit, nil
}

// decode reads a json body into form and validates it.
func (h *ServiceHandler) decode(r *http.Request, form any) error {
	if err := render.DecodeJSON(r.Body, form); err != nil {
		return validator.NewErrInvalidForm("malformed body: %v", err)
	}
	return h.validator.Validate(form)
}
