package service

import (
	"context"
	"errors"
	"time"

	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

type IdadiService struct {
	store  store.Store
	now    func() time.Time
	logger *log.StructuredLogger
}

func NewIdadiService(s store.Store) *IdadiService {
	return &IdadiService{
		store:  s,
		now:    time.Now,
		logger: log.NewDebugLogger("idadi_service"),
	}
}

// Create records the idadi of a patient. Missing standard scores are looked up in the normative
// tables for the protocol age; a missing row scores 0.
func (is *IdadiService) Create(ctx context.Context, form mappers.IdadiForm) (*model.Idadi, error) {
	tracer := is.logger.WithContext(ctx).Operation("create_idadi").
		WithUint("patient_id", form.PatientID).
		WithInt("values", len(form.Values)).
		Build()

	ctx, err := is.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	patient, err := is.store.Patient().Get(ctx, form.PatientID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPatientNotFound(form.PatientID)
		}
		return nil, err
	}

	if _, err := is.store.Idadi().GetByPatient(ctx, form.PatientID); err == nil {
		return nil, NewErrConflict("patient %d already has an idadi", form.PatientID)
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	idadi := model.Idadi{
		PatientID:       patient.ID,
		ApplicationDate: is.now(),
		ProtocolAge:     patient.AgeInMonths(is.now()),
	}
	if form.ApplicationDate != nil {
		idadi.ApplicationDate = *form.ApplicationDate
	}
	if form.ProtocolAge != nil {
		idadi.ProtocolAge = *form.ProtocolAge
	}

	for _, v := range form.Values {
		value, err := is.scored(ctx, idadi.ProtocolAge, v)
		if err != nil {
			return nil, err
		}
		idadi.Values = append(idadi.Values, value)
	}

	created, err := is.store.Idadi().Create(ctx, idadi)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	tracer.Success().WithUint("idadi_id", created.ID).WithInt("protocol_age", created.ProtocolAge).Log()
	return created, nil
}

func (is *IdadiService) Get(ctx context.Context, id uint) (*model.Idadi, error) {
	idadi, err := is.store.Idadi().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, id, "idadi")
	}
	return idadi, nil
}

func (is *IdadiService) GetByPatient(ctx context.Context, patientID uint) (*model.Idadi, error) {
	idadi, err := is.store.Idadi().GetByPatient(ctx, patientID)
	if err != nil {
		return nil, notFound(err, patientID, "idadi of patient")
	}
	return idadi, nil
}

// Update changes the header fields that are set and the listed values. Every value id must exist
// and belong to the idadi.
func (is *IdadiService) Update(ctx context.Context, id uint, form mappers.IdadiForm) (*model.Idadi, error) {
	ctx, err := is.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	idadi, err := is.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if form.ProtocolAge != nil {
		idadi.ProtocolAge = *form.ProtocolAge
	}
	if form.ApplicationDate != nil {
		idadi.ApplicationDate = *form.ApplicationDate
	}
	header := *idadi
	header.Values = nil
	if err := is.store.Idadi().Update(ctx, header); err != nil {
		return nil, notFound(err, id, "idadi")
	}

	for _, v := range form.Values {
		current, err := is.store.Idadi().GetValue(ctx, v.ID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, NewErrResourceNotFound(v.ID, "idadi value")
			}
			return nil, err
		}
		if current.IdadiID != id {
			return nil, NewErrBadRequest("idadi value %d does not belong to idadi %d", v.ID, id)
		}

		value, err := is.scored(ctx, idadi.ProtocolAge, v)
		if err != nil {
			return nil, err
		}
		value.IdadiID = id
		if err := is.store.Idadi().UpdateValue(ctx, value); err != nil {
			return nil, err
		}
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}
	return is.Get(ctx, id)
}

func (is *IdadiService) Delete(ctx context.Context, id uint) error {
	ctx, err := is.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := is.store.Idadi().Delete(ctx, id); err != nil {
		return notFound(err, id, "idadi")
	}
	_, err = store.Commit(ctx)
	return err
}

func (is *IdadiService) ListDomains(ctx context.Context) ([]model.IdadiDomain, error) {
	return is.store.Idadi().ListDomains(ctx)
}

func (is *IdadiService) scored(ctx context.Context, ageInMonths int, form mappers.IdadiValueForm) (model.IdadiValue, error) {
	value := form.ToModel()
	if form.StandardScore != nil {
		return value, nil
	}

	score, found, err := is.store.Idadi().StandardScore(ctx, ageInMonths, form.DomainID, form.RawScore)
	if err != nil {
		return model.IdadiValue{}, err
	}
	if !found {
		is.logger.WithContext(ctx).Operation("normative_lookup").
			WithUint("domain_id", form.DomainID).
			WithInt("age", ageInMonths).
			WithInt("raw_score", form.RawScore).
			Build().Step("no_normative_row").Log()
	}
	value.StandardScore = score
	return value, nil
}
