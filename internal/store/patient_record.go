package store

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
)

type PatientRecord interface {
	Get(ctx context.Context, id uint) (*model.PatientRecord, error)
	GetByPatient(ctx context.Context, patientID uint) (*model.PatientRecord, error)
	Create(ctx context.Context, record model.PatientRecord) (*model.PatientRecord, error)
	Update(ctx context.Context, record model.PatientRecord) (*model.PatientRecord, error)
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error
}

type PatientRecordStore struct {
	db *gorm.DB
}

var _ PatientRecord = (*PatientRecordStore)(nil)

func NewPatientRecordStore(db *gorm.DB) PatientRecord {
	return &PatientRecordStore{db: db}
}

func (r *PatientRecordStore) Get(ctx context.Context, id uint) (*model.PatientRecord, error) {
	var record model.PatientRecord
	if err := r.getDB(ctx).WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *PatientRecordStore) GetByPatient(ctx context.Context, patientID uint) (*model.PatientRecord, error) {
	var record model.PatientRecord
	if err := r.getDB(ctx).WithContext(ctx).Where("id_patient = ?", patientID).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *PatientRecordStore) Create(ctx context.Context, record model.PatientRecord) (*model.PatientRecord, error) {
	if err := r.getDB(ctx).WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *PatientRecordStore) Update(ctx context.Context, record model.PatientRecord) (*model.PatientRecord, error) {
	result := r.getDB(ctx).WithContext(ctx).Model(&record).
		Select("demand_description", "instruments_used", "idadi_analysis", "anamnese_analysis",
			"anamnese_result", "conclusion", "id_patient", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return r.Get(ctx, record.ID)
}

func (r *PatientRecordStore) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).WithContext(ctx).Delete(&model.PatientRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PatientRecordStore) DeleteByPatient(ctx context.Context, patientID uint) error {
	return r.getDB(ctx).WithContext(ctx).Where("id_patient = ?", patientID).Delete(&model.PatientRecord{}).Error
}

func (r *PatientRecordStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return r.db
}
