package service

import (
	"context"
	"errors"

	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
)

type PatientRecordService struct {
	store store.Store
}

func NewPatientRecordService(s store.Store) *PatientRecordService {
	return &PatientRecordService{store: s}
}

func (rs *PatientRecordService) Create(ctx context.Context, form mappers.PatientRecordForm) (*model.PatientRecord, error) {
	if _, err := rs.store.Patient().Get(ctx, form.PatientID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPatientNotFound(form.PatientID)
		}
		return nil, err
	}

	if _, err := rs.store.PatientRecord().GetByPatient(ctx, form.PatientID); err == nil {
		return nil, NewErrConflict("patient %d already has a record", form.PatientID)
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	record, err := rs.store.PatientRecord().Create(ctx, form.ToModel())
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, NewErrConflict("patient %d already has a record", form.PatientID)
		}
		return nil, err
	}
	return record, nil
}

func (rs *PatientRecordService) Get(ctx context.Context, id uint) (*model.PatientRecord, error) {
	record, err := rs.store.PatientRecord().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrResourceNotFound(id, "patient record")
		}
		return nil, err
	}
	return record, nil
}

func (rs *PatientRecordService) GetByPatient(ctx context.Context, patientID uint) (*model.PatientRecord, error) {
	record, err := rs.store.PatientRecord().GetByPatient(ctx, patientID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrResourceNotFound(patientID, "record of patient")
		}
		return nil, err
	}
	return record, nil
}

// Update replaces the text fields of the record. The owning patient never changes.
func (rs *PatientRecordService) Update(ctx context.Context, id uint, form mappers.PatientRecordForm) (*model.PatientRecord, error) {
	current, err := rs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	record := form.ToModel()
	record.ID = id
	record.PatientID = current.PatientID
	updated, err := rs.store.PatientRecord().Update(ctx, record)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrResourceNotFound(id, "patient record")
		}
		return nil, err
	}
	return updated, nil
}

func (rs *PatientRecordService) Delete(ctx context.Context, id uint) error {
	if err := rs.store.PatientRecord().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrResourceNotFound(id, "patient record")
		}
		return err
	}
	return nil
}
