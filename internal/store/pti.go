package store

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
)

const ptiTreePreload = "StimulusAreas.Topics.Subtopics"

type Pti interface {
	List(ctx context.Context) ([]model.Pti, error)
	Get(ctx context.Context, id uint) (*model.Pti, error)
	GetByPatient(ctx context.Context, patientID uint) (*model.Pti, error)
	// Create inserts the pti together with every nested node it carries.
	Create(ctx context.Context, pti model.Pti) (*model.Pti, error)
	Delete(ctx context.Context, id uint) error
	DeleteByPatient(ctx context.Context, patientID uint) error

	ListAreas(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiStimulusArea, error)
	GetArea(ctx context.Context, id uint) (*model.PtiStimulusArea, error)
	CreateArea(ctx context.Context, area model.PtiStimulusArea) (*model.PtiStimulusArea, error)
	RenameArea(ctx context.Context, id uint, name string) (*model.PtiStimulusArea, error)
	DeleteArea(ctx context.Context, id uint) error

	ListTopics(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiTopic, error)
	GetTopic(ctx context.Context, id uint) (*model.PtiTopic, error)
	CreateTopic(ctx context.Context, topic model.PtiTopic) (*model.PtiTopic, error)
	RenameTopic(ctx context.Context, id uint, name string) (*model.PtiTopic, error)
	DeleteTopic(ctx context.Context, id uint) error

	ListSubtopics(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiSubtopic, error)
	GetSubtopic(ctx context.Context, id uint) (*model.PtiSubtopic, error)
	CreateSubtopic(ctx context.Context, subtopic model.PtiSubtopic) (*model.PtiSubtopic, error)
	RenameSubtopic(ctx context.Context, id uint, name string) (*model.PtiSubtopic, error)
	DeleteSubtopic(ctx context.Context, id uint) error
}

type PtiStore struct {
	db *gorm.DB
}

var _ Pti = (*PtiStore)(nil)

func NewPtiStore(db *gorm.DB) Pti {
	return &PtiStore{db: db}
}

func (p *PtiStore) List(ctx context.Context) ([]model.Pti, error) {
	var ptis []model.Pti
	if err := p.getDB(ctx).WithContext(ctx).Preload(ptiTreePreload).Order("id").Find(&ptis).Error; err != nil {
		return nil, err
	}
	return ptis, nil
}

func (p *PtiStore) Get(ctx context.Context, id uint) (*model.Pti, error) {
	var pti model.Pti
	if err := p.getDB(ctx).WithContext(ctx).Preload(ptiTreePreload).First(&pti, id).Error; err != nil {
		return nil, translate(err)
	}
	return &pti, nil
}

func (p *PtiStore) GetByPatient(ctx context.Context, patientID uint) (*model.Pti, error) {
	var pti model.Pti
	err := p.getDB(ctx).WithContext(ctx).Preload(ptiTreePreload).Where("id_patient = ?", patientID).First(&pti).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pti, nil
}

func (p *PtiStore) Create(ctx context.Context, pti model.Pti) (*model.Pti, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&pti).Error; err != nil {
		return nil, translate(err)
	}
	return p.Get(ctx, pti.ID)
}

// Delete removes the tree bottom-up: subtopics, topics, stimulus areas and the pti row.
func (p *PtiStore) Delete(ctx context.Context, id uint) error {
	db := p.getDB(ctx).WithContext(ctx)

	var areas []uint
	if err := db.Model(&model.PtiStimulusArea{}).Where("id_pti = ?", id).Pluck("id", &areas).Error; err != nil {
		return err
	}
	if _, err := p.deleteAreas(ctx, areas); err != nil {
		return err
	}

	return affected(db.Delete(&model.Pti{}, id))
}

func (p *PtiStore) DeleteByPatient(ctx context.Context, patientID uint) error {
	var ids []uint
	if err := p.getDB(ctx).WithContext(ctx).Model(&model.Pti{}).Where("id_patient = ?", patientID).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := p.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (p *PtiStore) ListAreas(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiStimulusArea, error) {
	return listNodes[model.PtiStimulusArea](p.getDB(ctx).WithContext(ctx).Preload("Topics.Subtopics"), filter)
}

func (p *PtiStore) GetArea(ctx context.Context, id uint) (*model.PtiStimulusArea, error) {
	return getNode[model.PtiStimulusArea](p.getDB(ctx).WithContext(ctx).Preload("Topics.Subtopics"), id)
}

func (p *PtiStore) CreateArea(ctx context.Context, area model.PtiStimulusArea) (*model.PtiStimulusArea, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&area).Error; err != nil {
		return nil, translate(err)
	}
	return p.GetArea(ctx, area.ID)
}

func (p *PtiStore) RenameArea(ctx context.Context, id uint, name string) (*model.PtiStimulusArea, error) {
	if err := renameNode[model.PtiStimulusArea](p.getDB(ctx).WithContext(ctx), id, name); err != nil {
		return nil, err
	}
	return p.GetArea(ctx, id)
}

func (p *PtiStore) DeleteArea(ctx context.Context, id uint) error {
	n, err := p.deleteAreas(ctx, []uint{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (p *PtiStore) ListTopics(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiTopic, error) {
	return listNodes[model.PtiTopic](p.getDB(ctx).WithContext(ctx).Preload("Subtopics"), filter)
}

func (p *PtiStore) GetTopic(ctx context.Context, id uint) (*model.PtiTopic, error) {
	return getNode[model.PtiTopic](p.getDB(ctx).WithContext(ctx).Preload("Subtopics"), id)
}

func (p *PtiStore) CreateTopic(ctx context.Context, topic model.PtiTopic) (*model.PtiTopic, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&topic).Error; err != nil {
		return nil, translate(err)
	}
	return p.GetTopic(ctx, topic.ID)
}

func (p *PtiStore) RenameTopic(ctx context.Context, id uint, name string) (*model.PtiTopic, error) {
	if err := renameNode[model.PtiTopic](p.getDB(ctx).WithContext(ctx), id, name); err != nil {
		return nil, err
	}
	return p.GetTopic(ctx, id)
}

func (p *PtiStore) DeleteTopic(ctx context.Context, id uint) error {
	db := p.getDB(ctx).WithContext(ctx)
	if err := db.Where("id_pti_specific_objectives_topics = ?", id).Delete(&model.PtiSubtopic{}).Error; err != nil {
		return err
	}
	return affected(db.Delete(&model.PtiTopic{}, id))
}

func (p *PtiStore) ListSubtopics(ctx context.Context, filter *NodeQueryFilter) ([]model.PtiSubtopic, error) {
	return listNodes[model.PtiSubtopic](p.getDB(ctx).WithContext(ctx), filter)
}

func (p *PtiStore) GetSubtopic(ctx context.Context, id uint) (*model.PtiSubtopic, error) {
	return getNode[model.PtiSubtopic](p.getDB(ctx).WithContext(ctx), id)
}

func (p *PtiStore) CreateSubtopic(ctx context.Context, subtopic model.PtiSubtopic) (*model.PtiSubtopic, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&subtopic).Error; err != nil {
		return nil, translate(err)
	}
	return &subtopic, nil
}

func (p *PtiStore) RenameSubtopic(ctx context.Context, id uint, name string) (*model.PtiSubtopic, error) {
	if err := renameNode[model.PtiSubtopic](p.getDB(ctx).WithContext(ctx), id, name); err != nil {
		return nil, err
	}
	return p.GetSubtopic(ctx, id)
}

func (p *PtiStore) DeleteSubtopic(ctx context.Context, id uint) error {
	return affected(p.getDB(ctx).WithContext(ctx).Delete(&model.PtiSubtopic{}, id))
}

// deleteAreas removes the given stimulus areas after their subtopics and topics.
func (p *PtiStore) deleteAreas(ctx context.Context, areas []uint) (int64, error) {
	if len(areas) == 0 {
		return 0, nil
	}
	db := p.getDB(ctx).WithContext(ctx)

	topics := db.Model(&model.PtiTopic{}).Select("id").Where("id_pti_stimulus_area IN ?", areas)
	if err := db.Where("id_pti_specific_objectives_topics IN (?)", topics).Delete(&model.PtiSubtopic{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("id_pti_stimulus_area IN ?", areas).Delete(&model.PtiTopic{}).Error; err != nil {
		return 0, err
	}
	result := db.Where("id IN ?", areas).Delete(&model.PtiStimulusArea{})
	return result.RowsAffected, result.Error
}

func (p *PtiStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return p.db
}

func listNodes[T any](tx *gorm.DB, filter *NodeQueryFilter) ([]T, error) {
	var nodes []T
	tx = tx.Model(new(T))
	if filter != nil {
		tx = apply(tx, filter.QueryFn)
	}
	if err := tx.Order("id").Find(&nodes).Error; err != nil {
		return nil, err
	}
	return nodes, nil
}

func getNode[T any](tx *gorm.DB, id uint) (*T, error) {
	node := new(T)
	if err := tx.First(node, id).Error; err != nil {
		return nil, translate(err)
	}
	return node, nil
}

func renameNode[T any](tx *gorm.DB, id uint, name string) error {
	return affected(tx.Model(new(T)).Where("id = ?", id).Update("name", name))
}

// affected reports ErrRecordNotFound when the statement touched no row.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
