package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/pti)
func (h *ServiceHandler) ListPti(w http.ResponseWriter, r *http.Request) {
	ptis, err := h.ptiSrv.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PtiListToApi(ptis))
}

// (POST /api/v1/pti)
func (h *ServiceHandler) CreatePti(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.PtiCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	pti, err := h.ptiSrv.Create(r.Context(), mappers.PtiFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PtiToApi(*pti))
}

// (POST /api/v1/pti/full_insert)
func (h *ServiceHandler) FullInsertPti(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.PtiFullInsert
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	pti, err := h.ptiSrv.FullInsert(r.Context(), mappers.PtiFullInsertFormApi(form))
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.PtiToApi(*pti))
}

// (GET /api/v1/pti/{id})
func (h *ServiceHandler) GetPti(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	pti, err := h.ptiSrv.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PtiToApi(*pti))
}

// (GET /api/v1/pti/from_patient/{id})
func (h *ServiceHandler) GetPtiByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	pti, err := h.ptiSrv.GetByPatient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.PtiToApi(*pti))
}

// (DELETE /api/v1/pti/{id})
func (h *ServiceHandler) DeletePti(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ptiSrv.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}
