package service

import (
	"context"
	"errors"

	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

type PsychologistService struct {
	store  store.Store
	blob   blob.Store
	logger *log.StructuredLogger
}

func NewPsychologistService(s store.Store, blobStore blob.Store) *PsychologistService {
	return &PsychologistService{
		store:  s,
		blob:   blobStore,
		logger: log.NewDebugLogger("psychologist_service"),
	}
}

func (ps *PsychologistService) List(ctx context.Context, skip, limit int) (model.PsychologistList, error) {
	return ps.store.Psychologist().List(ctx, store.NewPsychologistQueryFilter(), store.NewQueryOptions().WithPagination(skip, limit).WithOrder("id"))
}

func (ps *PsychologistService) Get(ctx context.Context, id uint) (*model.Psychologist, error) {
	p, err := ps.store.Psychologist().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPsychologistNotFound(id)
		}
		return nil, err
	}
	return p, nil
}

func (ps *PsychologistService) Create(ctx context.Context, form mappers.PsychologistForm) (*model.Psychologist, error) {
	tracer := ps.logger.WithContext(ctx).Operation("create_psychologist").
		WithString("crp", form.Crp).
		Build()

	if err := ps.ensureUnique(ctx, form, 0); err != nil {
		return nil, err
	}

	p, err := ps.store.Psychologist().Create(ctx, form.ToModel())
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, NewErrConflict("psychologist %q already exists", form.Name)
		}
		tracer.Error(err).Log()
		return nil, err
	}

	tracer.Success().WithUint("psychologist_id", p.ID).Log()
	return p, nil
}

func (ps *PsychologistService) Update(ctx context.Context, id uint, form mappers.PsychologistForm) (*model.Psychologist, error) {
	if _, err := ps.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := ps.ensureUnique(ctx, form, id); err != nil {
		return nil, err
	}

	p := form.ToModel()
	p.ID = id
	updated, err := ps.store.Psychologist().Update(ctx, p)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPsychologistNotFound(id)
		}
		return nil, err
	}
	return updated, nil
}

// Delete refuses while the psychologist still has patients. The program packet goes with
// the psychologist: rows inside the transaction, objects after commit.
func (ps *PsychologistService) Delete(ctx context.Context, id uint) error {
	tracer := ps.logger.WithContext(ctx).Operation("delete_psychologist").
		WithUint("psychologist_id", id).
		Build()

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.store.Psychologist().Lock(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrPsychologistNotFound(id)
		}
		return err
	}

	patients, err := ps.store.Patient().Count(ctx, store.NewPatientQueryFilter().ByPsychologist(id))
	if err != nil {
		return err
	}
	if patients > 0 {
		return NewErrConflict("psychologist %d still has %d patients", id, patients)
	}

	pages, err := ps.store.Program().List(ctx, store.NewProgramQueryFilter().ByOwner(id))
	if err != nil {
		return err
	}
	if err := ps.store.Program().DeleteByOwner(ctx, id); err != nil {
		return err
	}
	if err := ps.store.Psychologist().Delete(ctx, id); err != nil {
		return err
	}
	if _, err := store.Commit(ctx); err != nil {
		return err
	}
	tracer.Step("rows_deleted").WithInt("program_pages", len(pages)).Log()

	var errs []error
	for _, key := range objectKeys(pages) {
		if err := ps.blob.Delete(ctx, blob.BucketPrograms, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		tracer.Error(err).Log()
		return NewErrStorage(err)
	}

	tracer.Success().Log()
	return nil
}

func (ps *PsychologistService) ensureUnique(ctx context.Context, form mappers.PsychologistForm, exclude uint) error {
	filter := store.NewPsychologistQueryFilter().ByNameOrCrp(form.Name, form.Crp)
	if exclude != 0 {
		filter = filter.ExcludingID(exclude)
	}
	existing, err := ps.store.Psychologist().List(ctx, filter, store.NewQueryOptions().WithPagination(0, 1))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return NewErrConflict("a psychologist named %q or with crp %q already exists", form.Name, form.Crp)
	}
	return nil
}
