package v1alpha1

import (
	"io"
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
	"github.com/ranis-junior/psychology-reports/internal/service"
)

const photoField = "file"

// (GET /api/v1/patients)
func (h *ServiceHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patients, err := h.patientSrv.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientListToApi(patients))
}

// (GET /api/v1/patients/from_psychologist/{id})
func (h *ServiceHandler) ListPatientsByPsychologist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patients, err := h.patientSrv.ListByPsychologist(r.Context(), id, skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientViewListToApi(patients))
}

// (POST /api/v1/patients)
func (h *ServiceHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.PatientCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	patient, err := h.patientSrv.Create(r.Context(), mappers.PatientFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PatientToApi(*patient))
}

// (GET /api/v1/patients/{id})
func (h *ServiceHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	patient, err := h.patientSrv.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientViewToApi(*patient))
}

// (PUT /api/v1/patients/{id})
func (h *ServiceHandler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.PatientUpdate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	patient, err := h.patientSrv.Update(r.Context(), id, mappers.PatientFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientToApi(*patient))
}

// (DELETE /api/v1/patients/{id})
func (h *ServiceHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.patientSrv.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}

// (POST /api/v1/patients/upload/{id})
func (h *ServiceHandler) UploadPatientPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile(photoField)
	if err != nil {
		writeError(w, r, service.NewErrBadRequest("missing %q file", photoField))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patient, err := h.patientSrv.UploadPhoto(r.Context(), id, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PatientViewToApi(*patient))
}
