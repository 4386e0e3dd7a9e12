package store

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
)

type Patient interface {
	List(ctx context.Context, filter *PatientQueryFilter, opts *QueryOptions) (model.PatientList, error)
	Count(ctx context.Context, filter *PatientQueryFilter) (int64, error)
	Get(ctx context.Context, id uint) (*model.Patient, error)
	Create(ctx context.Context, patient model.Patient) (*model.Patient, error)
	Update(ctx context.Context, patient model.Patient) (*model.Patient, error)
	UpdatePhoto(ctx context.Context, id uint, photo string) error
	Delete(ctx context.Context, id uint) error
}

type PatientStore struct {
	db *gorm.DB
}

var _ Patient = (*PatientStore)(nil)

func NewPatientStore(db *gorm.DB) Patient {
	return &PatientStore{db: db}
}

func (p *PatientStore) List(ctx context.Context, filter *PatientQueryFilter, opts *QueryOptions) (model.PatientList, error) {
	var patients model.PatientList
	tx := p.getDB(ctx).WithContext(ctx).Model(&patients)

	if filter != nil {
		tx = apply(tx, filter.QueryFn)
	}
	if opts != nil {
		tx = apply(tx, opts.QueryFn)
	}

	if err := tx.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

func (p *PatientStore) Count(ctx context.Context, filter *PatientQueryFilter) (int64, error) {
	var count int64
	tx := p.getDB(ctx).WithContext(ctx).Model(&model.Patient{})
	if filter != nil {
		tx = apply(tx, filter.QueryFn)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (p *PatientStore) Get(ctx context.Context, id uint) (*model.Patient, error) {
	var patient model.Patient
	if err := p.getDB(ctx).WithContext(ctx).First(&patient, id).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (p *PatientStore) Create(ctx context.Context, patient model.Patient) (*model.Patient, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&patient).Error; err != nil {
		return nil, translate(err)
	}
	return &patient, nil
}

func (p *PatientStore) Update(ctx context.Context, patient model.Patient) (*model.Patient, error) {
	result := p.getDB(ctx).WithContext(ctx).Model(&patient).
		Select("name", "birth_date", "gender", "id_psychologist", "father", "father_profession",
			"mother", "mother_profession", "updated_at").
		Updates(&patient)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return p.Get(ctx, patient.ID)
}

func (p *PatientStore) UpdatePhoto(ctx context.Context, id uint, photo string) error {
	result := p.getDB(ctx).WithContext(ctx).Model(&model.Patient{}).Where("id = ?", id).Update("photo", photo)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PatientStore) Delete(ctx context.Context, id uint) error {
	result := p.getDB(ctx).WithContext(ctx).Delete(&model.Patient{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PatientStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return p.db
}
