package store

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Psychologist interface {
	List(ctx context.Context, filter *PsychologistQueryFilter, opts *QueryOptions) (model.PsychologistList, error)
	Get(ctx context.Context, id uint) (*model.Psychologist, error)
	Create(ctx context.Context, psychologist model.Psychologist) (*model.Psychologist, error)
	Update(ctx context.Context, psychologist model.Psychologist) (*model.Psychologist, error)
	Delete(ctx context.Context, id uint) error
	// Lock takes a row lock on the psychologist for the rest of the current transaction.
	Lock(ctx context.Context, id uint) error
}

type PsychologistStore struct {
	db *gorm.DB
}

// Make sure we conform to Psychologist interface
var _ Psychologist = (*PsychologistStore)(nil)

func NewPsychologistStore(db *gorm.DB) Psychologist {
	return &PsychologistStore{db: db}
}

func (p *PsychologistStore) List(ctx context.Context, filter *PsychologistQueryFilter, opts *QueryOptions) (model.PsychologistList, error) {
	var psychologists model.PsychologistList
	tx := p.getDB(ctx).WithContext(ctx).Model(&psychologists)

	if filter != nil {
		tx = apply(tx, filter.QueryFn)
	}
	if opts != nil {
		tx = apply(tx, opts.QueryFn)
	}

	if err := tx.Find(&psychologists).Error; err != nil {
		return nil, err
	}
	return psychologists, nil
}

func (p *PsychologistStore) Get(ctx context.Context, id uint) (*model.Psychologist, error) {
	var psychologist model.Psychologist
	if err := p.getDB(ctx).WithContext(ctx).First(&psychologist, id).Error; err != nil {
		return nil, translate(err)
	}
	return &psychologist, nil
}

func (p *PsychologistStore) Create(ctx context.Context, psychologist model.Psychologist) (*model.Psychologist, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&psychologist).Error; err != nil {
		return nil, translate(err)
	}
	return &psychologist, nil
}

func (p *PsychologistStore) Update(ctx context.Context, psychologist model.Psychologist) (*model.Psychologist, error) {
	result := p.getDB(ctx).WithContext(ctx).Model(&psychologist).
		Select("name", "birth_date", "crp", "updated_at").
		Updates(&psychologist)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return p.Get(ctx, psychologist.ID)
}

func (p *PsychologistStore) Delete(ctx context.Context, id uint) error {
	result := p.getDB(ctx).WithContext(ctx).Delete(&model.Psychologist{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PsychologistStore) Lock(ctx context.Context, id uint) error {
	var psychologist model.Psychologist
	err := p.getDB(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&psychologist, id).Error
	return translate(err)
}

func (p *PsychologistStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return p.db
}
