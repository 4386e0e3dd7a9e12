package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"github.com/ranis-junior/psychology-reports/pkg/log"
	"go.uber.org/zap"
)

// PatientView is a patient with the presigned url of its photo, when it has one.
type PatientView struct {
	model.Patient
	PhotoURL *string
}

type PatientService struct {
	store  store.Store
	blob   blob.Store
	urlTTL time.Duration
	logger *log.StructuredLogger
}

func NewPatientService(s store.Store, blobStore blob.Store, urlTTL time.Duration) *PatientService {
	if urlTTL <= 0 {
		urlTTL = blob.DefaultURLExpiry
	}
	return &PatientService{
		store:  s,
		blob:   blobStore,
		urlTTL: urlTTL,
		logger: log.NewDebugLogger("patient_service"),
	}
}

func (ps *PatientService) Get(ctx context.Context, id uint) (*PatientView, error) {
	patient, err := ps.patient(ctx, id)
	if err != nil {
		return nil, err
	}
	return ps.view(ctx, *patient)
}

// ListByPsychologist pages through the patients of a psychologist ordered by name.
func (ps *PatientService) ListByPsychologist(ctx context.Context, psychologistID uint, skip, limit int) ([]PatientView, error) {
	patients, err := ps.store.Patient().List(ctx,
		store.NewPatientQueryFilter().ByPsychologist(psychologistID),
		store.NewQueryOptions().WithOrder("name").WithPagination(skip, limit))
	if err != nil {
		return nil, err
	}

	views := make([]PatientView, 0, len(patients))
	for _, p := range patients {
		v, err := ps.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (ps *PatientService) List(ctx context.Context, skip, limit int) (model.PatientList, error) {
	return ps.store.Patient().List(ctx, store.NewPatientQueryFilter(), store.NewQueryOptions().WithOrder("id").WithPagination(skip, limit))
}

func (ps *PatientService) Create(ctx context.Context, form mappers.PatientForm) (*model.Patient, error) {
	tracer := ps.logger.WithContext(ctx).Operation("create_patient").
		WithUint("psychologist_id", form.PsychologistID).
		Build()

	if err := ps.validate(ctx, form, 0); err != nil {
		return nil, err
	}

	patient, err := ps.store.Patient().Create(ctx, form.ToModel())
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Success().WithUint("patient_id", patient.ID).Log()
	return patient, nil
}

func (ps *PatientService) Update(ctx context.Context, id uint, form mappers.PatientForm) (*model.Patient, error) {
	if _, err := ps.patient(ctx, id); err != nil {
		return nil, err
	}
	if err := ps.validate(ctx, form, id); err != nil {
		return nil, err
	}

	p := form.ToModel()
	p.ID = id
	updated, err := ps.store.Patient().Update(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPatientNotFound(id)
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes, in order, the pti tree, the idadi with its values, the record and the patient.
// The photo object is removed after commit.
func (ps *PatientService) Delete(ctx context.Context, id uint) error {
	tracer := ps.logger.WithContext(ctx).Operation("delete_patient").
		WithUint("patient_id", id).
		Build()

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	patient, err := ps.patient(ctx, id)
	if err != nil {
		return err
	}

	if err := ps.store.Pti().DeleteByPatient(ctx, id); err != nil {
		return err
	}
	if err := ps.store.Idadi().DeleteByPatient(ctx, id); err != nil {
		return err
	}
	if err := ps.store.PatientRecord().DeleteByPatient(ctx, id); err != nil {
		return err
	}
	if err := ps.store.Patient().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := store.Commit(ctx); err != nil {
		return err
	}

	if patient.Photo != nil && *patient.Photo != "" {
		key := blob.Key(patient.PhotoPath(), *patient.Photo)
		if err := ps.blob.Delete(ctx, blob.BucketPhotos, key); err != nil {
			tracer.Error(err).Log()
			return NewErrStorage(err)
		}
	}

	tracer.Success().Log()
	return nil
}

// UploadPhoto stores the photo as cover.<ext> under the patient id and records its name.
func (ps *PatientService) UploadPhoto(ctx context.Context, id uint, contentType string, data []byte) (*PatientView, error) {
	tracer := ps.logger.WithContext(ctx).Operation("upload_patient_photo").
		WithUint("patient_id", id).
		WithString("content_type", contentType).
		Build()

	ext, err := photoExtension(contentType)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, NewErrBadRequest("photo is empty")
	}

	patient, err := ps.patient(ctx, id)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("cover.%s", ext)
	key := blob.Key(patient.PhotoPath(), name)
	if err := ps.blob.Put(ctx, blob.BucketPhotos, key, data, contentType); err != nil {
		tracer.Error(err).Log()
		return nil, NewErrStorage(err)
	}

	if err := ps.store.Patient().UpdatePhoto(ctx, id, name); err != nil {
		if dErr := ps.blob.Delete(context.WithoutCancel(ctx), blob.BucketPhotos, key); dErr != nil {
			zap.S().Named("patient_service").Errorw("failed to remove orphan photo", "key", key, "error", dErr)
		}
		return nil, err
	}

	// a previous photo with another extension is now unreferenced
	if patient.Photo != nil && *patient.Photo != "" && *patient.Photo != name {
		if err := ps.blob.Delete(ctx, blob.BucketPhotos, blob.Key(patient.PhotoPath(), *patient.Photo)); err != nil {
			zap.S().Named("patient_service").Warnw("failed to remove previous photo", "patient_id", id, "error", err)
		}
	}

	patient.Photo = &name
	tracer.Success().Log()
	return ps.view(ctx, *patient)
}

func photoExtension(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", NewErrBadRequest("photo must be an image, got %q", contentType)
	}
	ext := strings.TrimPrefix(mediaType, "image/")
	if ext == "jpeg" {
		ext = "jpg"
	}
	if i := strings.IndexAny(ext, "+;"); i > 0 {
		ext = ext[:i]
	}
	return ext, nil
}

func (ps *PatientService) validate(ctx context.Context, form mappers.PatientForm, exclude uint) error {
	if _, err := ps.store.Psychologist().Get(ctx, form.PsychologistID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrPsychologistNotFound(form.PsychologistID)
		}
		return err
	}

	existing, err := ps.store.Patient().List(ctx, store.NewPatientQueryFilter().ByNameAndBirthDate(form.Name, form.BirthDate), nil)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID != exclude {
			return NewErrConflict("patient %q born on %s already exists", form.Name, form.BirthDate.Format(time.DateOnly))
		}
	}
	return nil
}

func (ps *PatientService) patient(ctx context.Context, id uint) (*model.Patient, error) {
	patient, err := ps.store.Patient().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPatientNotFound(id)
		}
		return nil, err
	}
	return patient, nil
}

func (ps *PatientService) view(ctx context.Context, patient model.Patient) (*PatientView, error) {
	v := &PatientView{Patient: patient}
	if patient.Photo == nil || *patient.Photo == "" {
		return v, nil
	}
	u, err := ps.blob.URL(ctx, blob.BucketPhotos, blob.Key(patient.PhotoPath(), *patient.Photo), ps.urlTTL)
	if err != nil {
		return nil, NewErrStorage(err)
	}
	v.PhotoURL = &u
	return v, nil
}
