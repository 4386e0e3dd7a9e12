package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

const filesField = "files"

// (GET /api/v1/programs/{id})
func (h *ServiceHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.programSrv.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.ProgramDocumentListToApi(docs))
}

// (POST /api/v1/programs/upload/image/{id})
func (h *ServiceHandler) UploadProgramImages(w http.ResponseWriter, r *http.Request) {
	h.uploadFiles(w, r, h.programSrv.UploadImages)
}

// (POST /api/v1/programs/upload/pdf/{id})
func (h *ServiceHandler) UploadProgramDocuments(w http.ResponseWriter, r *http.Request) {
	h.uploadFiles(w, r, h.programSrv.UploadDocuments)
}

// (POST /api/v1/programs/upload/image-link/{id})
func (h *ServiceHandler) UploadProgramImageLinks(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.ImageLinks
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.programSrv.UploadImageLinks(r.Context(), owner, form.Links)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.ProgramDocumentListToApi(docs))
}

// (POST /api/v1/programs/generate/{id})
// Answers 201 when the merged document was rebuilt and 200 when the stored one is reused.
func (h *ServiceHandler) GenerateProgram(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := log.NewDebugLogger("program_handler").WithContext(r.Context()).
		Operation("generate_program").
		WithUint("psychologist_id", owner).
		Build()

	var form v1alpha1.ProgramOrdering
	if err := h.decode(r, &form); err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}

	generated, err := h.programSrv.Generate(r.Context(), owner, mappers.PageOrdersApi(form))
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}

	logger.Success().WithBool("regenerated", generated.Regenerated).Log()

	status := http.StatusOK
	if generated.Regenerated {
		status = http.StatusCreated
	}
	respond(w, r, status, mappers.GeneratedProgramToApi(*generated))
}

// (PUT /api/v1/programs/reorder/{id})
func (h *ServiceHandler) ReorderPrograms(w http.ResponseWriter, r *http.Request) {
	owner, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.ProgramOrdering
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.programSrv.Reorder(r.Context(), owner, mappers.PageOrdersApi(form)); err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.programSrv.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.ProgramDocumentListToApi(docs))
}

// (POST /api/v1/programs/duplicate/{id})
func (h *ServiceHandler) DuplicateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := h.programSrv.DuplicatePair(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.ProgramDocumentListToApi(docs))
}

// (DELETE /api/v1/programs/{id})
func (h *ServiceHandler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.programSrv.DeletePair(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}
