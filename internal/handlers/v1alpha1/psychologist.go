package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/psychologists)
func (h *ServiceHandler) ListPsychologists(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	psychologists, err := h.psychologistSrv.List(r.Context(), skip, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PsychologistListToApi(psychologists))
}

// (POST /api/v1/psychologists)
func (h *ServiceHandler) CreatePsychologist(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.PsychologistCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	psychologist, err := h.psychologistSrv.Create(r.Context(), mappers.PsychologistFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PsychologistToApi(*psychologist))
}

// (GET /api/v1/psychologists/{id})
func (h *ServiceHandler) GetPsychologist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	psychologist, err := h.psychologistSrv.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PsychologistToApi(*psychologist))
}

// (PUT /api/v1/psychologists/{id})
func (h *ServiceHandler) UpdatePsychologist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.PsychologistUpdate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	psychologist, err := h.psychologistSrv.Update(r.Context(), id, mappers.PsychologistFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PsychologistToApi(*psychologist))
}

// (DELETE /api/v1/psychologists/{id})
func (h *ServiceHandler) DeletePsychologist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.psychologistSrv.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}
