package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
)

// (POST /api/v1/patient_records)
func (h *ServiceHandler) CreatePatientRecord(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.PatientRecordCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.patientRecordSrv.Create(r.Context(), mappers.PatientRecordFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PatientRecordToApi(*record))
}

// (GET /api/v1/patient_records/{id})
func (h *ServiceHandler) GetPatientRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.patientRecordSrv.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientRecordToApi(*record))
}

// (GET /api/v1/patient_records/from_patient/{id})
func (h *ServiceHandler) GetPatientRecordByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.patientRecordSrv.GetByPatient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientRecordToApi(*record))
}

// (PUT /api/v1/patient_records/{id})
func (h *ServiceHandler) UpdatePatientRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.PatientRecordUpdate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.patientRecordSrv.Update(r.Context(), id, mappers.PatientRecordUpdateFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PatientRecordToApi(*record))
}

// (DELETE /api/v1/patient_records/{id})
func (h *ServiceHandler) DeletePatientRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.patientRecordSrv.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}
