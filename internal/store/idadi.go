package store

import (
	"context"
	"errors"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Idadi interface {
	Get(ctx context.Context, id uint) (*model.Idadi, error)
	GetByPatient(ctx context.Context, patientID uint) (*model.Idadi, error)
	Create(ctx context.Context, idadi model.Idadi) (*model.Idadi, error)
	Update(ctx context.Context, idadi model.Idadi) error
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error

	GetValue(ctx context.Context, id uint) (*model.IdadiValue, error)
	UpdateValue(ctx context.Context, value model.IdadiValue) error

	ListDomains(ctx context.Context) ([]model.IdadiDomain, error)
	GetDomainByName(ctx context.Context, name string) (*model.IdadiDomain, error)
	CreateDomain(ctx context.Context, domain model.IdadiDomain) (*model.IdadiDomain, error)

	// StandardScore looks the raw score up in the normative table of the domain for the given age
	// in months. found is false when no row covers the combination.
	StandardScore(ctx context.Context, ageInMonths int, domainID uint, rawScore int) (score int, found bool, err error)
	ReplaceNormativeTable(ctx context.Context, domainID uint, rows []model.IdadiNormativeTable) error
}

type IdadiStore struct {
	db *gorm.DB
}

var _ Idadi = (*IdadiStore)(nil)

func NewIdadiStore(db *gorm.DB) Idadi {
	return &IdadiStore{db: db}
}

func (i *IdadiStore) Get(ctx context.Context, id uint) (*model.Idadi, error) {
	var idadi model.Idadi
	if err := i.getDB(ctx).WithContext(ctx).Preload("Values", orderByID).First(&idadi, id).Error; err != nil {
		return nil, translate(err)
	}
	return &idadi, nil
}

func (i *IdadiStore) GetByPatient(ctx context.Context, patientID uint) (*model.Idadi, error) {
	var idadi model.Idadi
	err := i.getDB(ctx).WithContext(ctx).Preload("Values", orderByID).Where("id_patient = ?", patientID).First(&idadi).Error
	if err != nil {
		return nil, translate(err)
	}
	return &idadi, nil
}

func (i *IdadiStore) Create(ctx context.Context, idadi model.Idadi) (*model.Idadi, error) {
	values := idadi.Values
	idadi.Values = nil

	db := i.getDB(ctx).WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&idadi).Error; err != nil {
		return nil, translate(err)
	}
	for j := range values {
		values[j].IdadiID = idadi.ID
		if err := db.Create(&values[j]).Error; err != nil {
			return nil, translate(err)
		}
	}
	return i.Get(ctx, idadi.ID)
}

func (i *IdadiStore) Update(ctx context.Context, idadi model.Idadi) error {
	return affected(i.getDB(ctx).WithContext(ctx).Model(&idadi).
		Select("protocol_age", "application_date", "updated_at").
		Updates(&idadi))
}

// Delete removes the values before the idadi row.
func (i *IdadiStore) Delete(ctx context.Context, id uint) error {
	db := i.getDB(ctx).WithContext(ctx)
	if err := db.Where("id_idadi = ?", id).Delete(&model.IdadiValue{}).Error; err != nil {
		return err
	}
	return affected(db.Delete(&model.Idadi{}, id))
}

func (i *IdadiStore) DeleteByPatient(ctx context.Context, patientID uint) error {
	db := i.getDB(ctx).WithContext(ctx)
	idadis := db.Model(&model.Idadi{}).Select("id").Where("id_patient = ?", patientID)
	if err := db.Where("id_idadi IN (?)", idadis).Delete(&model.IdadiValue{}).Error; err != nil {
		return err
	}
	return db.Where("id_patient = ?", patientID).Delete(&model.Idadi{}).Error
}

func (i *IdadiStore) GetValue(ctx context.Context, id uint) (*model.IdadiValue, error) {
	var value model.IdadiValue
	if err := i.getDB(ctx).WithContext(ctx).First(&value, id).Error; err != nil {
		return nil, translate(err)
	}
	return &value, nil
}

func (i *IdadiStore) UpdateValue(ctx context.Context, value model.IdadiValue) error {
	return affected(i.getDB(ctx).WithContext(ctx).Model(&value).
		Select("raw_score", "standard_score", "id_domain", "updated_at").
		Updates(&value))
}

func (i *IdadiStore) ListDomains(ctx context.Context) ([]model.IdadiDomain, error) {
	var domains []model.IdadiDomain
	if err := i.getDB(ctx).WithContext(ctx).Order("id").Find(&domains).Error; err != nil {
		return nil, err
	}
	return domains, nil
}

func (i *IdadiStore) GetDomainByName(ctx context.Context, name string) (*model.IdadiDomain, error) {
	var domain model.IdadiDomain
	if err := i.getDB(ctx).WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&domain).Error; err != nil {
		return nil, translate(err)
	}
	return &domain, nil
}

func (i *IdadiStore) CreateDomain(ctx context.Context, domain model.IdadiDomain) (*model.IdadiDomain, error) {
	if err := i.getDB(ctx).WithContext(ctx).Create(&domain).Error; err != nil {
		return nil, translate(err)
	}
	return &domain, nil
}

func (i *IdadiStore) StandardScore(ctx context.Context, ageInMonths int, domainID uint, rawScore int) (int, bool, error) {
	var row model.IdadiNormativeTable
	err := i.getDB(ctx).WithContext(ctx).
		Where("initial_age_range <= ? AND final_age_range >= ?", ageInMonths, ageInMonths).
		Where("id_domain = ? AND raw_score = ?", domainID, rawScore).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.Standardized, true, nil
}

func (i *IdadiStore) ReplaceNormativeTable(ctx context.Context, domainID uint, rows []model.IdadiNormativeTable) error {
	db := i.getDB(ctx).WithContext(ctx)
	if err := db.Where("id_domain = ?", domainID).Delete(&model.IdadiNormativeTable{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for j := range rows {
		rows[j].DomainID = domainID
	}
	return db.CreateInBatches(rows, 200).Error
}

func (i *IdadiStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return i.db
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
