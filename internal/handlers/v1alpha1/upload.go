package v1alpha1

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

type uploadFunc func(ctx context.Context, owner uint, files []service.UploadFile) ([]service.ProgramDocument, error)

// parseMultipart bounds the body to the configured upload limit before parsing it.
func (h *ServiceHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return service.NewErrBadRequest("invalid multipart body: %v", err)
	}
	return nil
}

func (h *ServiceHandler) readFiles(r *http.Request, field string) ([]service.UploadFile, error) {
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, service.NewErrEmptyInput(field)
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, service.UploadFile{Filename: header.Filename, Content: content})
	}
	return files, nil
}

func (h *ServiceHandler) uploadFiles(w http.ResponseWriter, r *http.Request, upload uploadFunc) {
	owner, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := log.NewDebugLogger("program_handler").WithContext(r.Context()).
		Operation("upload_program_files").
		WithUint("psychologist_id", owner).
		WithString("path", r.URL.Path).
		Build()

	if err := h.parseMultipart(w, r); err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files, err := h.readFiles(r, filesField)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}
	logger.Step("read_files").WithInt("count", len(files)).Log()

	docs, err := upload(r.Context(), owner, files)
	if err != nil {
		logger.Error(err).Log()
		writeError(w, r, err)
		return
	}

	logger.Success().WithInt("documents", len(docs)).Log()

	respond(w, r, http.StatusCreated, mappers.ProgramDocumentListToApi(docs))
}
