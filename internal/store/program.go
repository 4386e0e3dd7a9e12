package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"gorm.io/gorm"
)

// Program keeps the pages of the psychologists' program packets.
type Program interface {
	List(ctx context.Context, filter *ProgramQueryFilter) (model.ProgramPageList, error)
	Get(ctx context.Context, id uint) (*model.ProgramPage, error)
	ListGroup(ctx context.Context, group uuid.UUID) (model.ProgramPageList, error)
	// NextSequence returns the sequence following the highest uploaded page of the owner, 0 when
	// the owner has none.
	NextSequence(ctx context.Context, owner uint) (int, error)
	CreatePair(ctx context.Context, pdf, cover model.ProgramPage) (model.ProgramPageList, error)
	Create(ctx context.Context, page model.ProgramPage) (*model.ProgramPage, error)
	DeleteGroup(ctx context.Context, group uuid.UUID) error
	DeleteByOwner(ctx context.Context, owner uint) error
	// ShiftDown decrements every uploaded page of the owner placed after sequence.
	ShiftDown(ctx context.Context, owner uint, after int) error
	// ShiftUp increments every uploaded page of the owner placed after sequence.
	ShiftUp(ctx context.Context, owner uint, after int) error
	UpdateGroupSequence(ctx context.Context, group uuid.UUID, sequence int) error
	Generated(ctx context.Context, owner uint) (*model.ProgramPage, error)
	DeleteGenerated(ctx context.Context, owner uint) (model.ProgramPageList, error)
}

type ProgramStore struct {
	db *gorm.DB
}

var _ Program = (*ProgramStore)(nil)

func NewProgramStore(db *gorm.DB) Program {
	return &ProgramStore{db: db}
}

func (p *ProgramStore) List(ctx context.Context, filter *ProgramQueryFilter) (model.ProgramPageList, error) {
	var pages model.ProgramPageList
	tx := p.getDB(ctx).WithContext(ctx).Model(&pages)
	if filter != nil {
		tx = apply(tx, filter.QueryFn)
	}
	if err := tx.Order("sequence").Order("role DESC").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (p *ProgramStore) Get(ctx context.Context, id uint) (*model.ProgramPage, error) {
	var page model.ProgramPage
	if err := p.getDB(ctx).WithContext(ctx).First(&page, id).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (p *ProgramStore) ListGroup(ctx context.Context, group uuid.UUID) (model.ProgramPageList, error) {
	pages, err := p.List(ctx, NewProgramQueryFilter().ByGroup(group))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrRecordNotFound
	}
	return pages, nil
}

func (p *ProgramStore) NextSequence(ctx context.Context, owner uint) (int, error) {
	var max sql.NullInt64
	err := p.getDB(ctx).WithContext(ctx).Model(&model.ProgramPage{}).
		Where("id_psychologist = ? AND generated = ?", owner, false).
		Select("MAX(sequence)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (p *ProgramStore) CreatePair(ctx context.Context, pdf, cover model.ProgramPage) (model.ProgramPageList, error) {
	pages := model.ProgramPageList{pdf, cover}
	if err := p.getDB(ctx).WithContext(ctx).Create(&pages).Error; err != nil {
		return nil, translate(err)
	}
	return pages, nil
}

func (p *ProgramStore) Create(ctx context.Context, page model.ProgramPage) (*model.ProgramPage, error) {
	if err := p.getDB(ctx).WithContext(ctx).Create(&page).Error; err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

func (p *ProgramStore) DeleteGroup(ctx context.Context, group uuid.UUID) error {
	return affected(p.getDB(ctx).WithContext(ctx).Where("group_id = ?", group).Delete(&model.ProgramPage{}))
}

func (p *ProgramStore) DeleteByOwner(ctx context.Context, owner uint) error {
	return p.getDB(ctx).WithContext(ctx).Where("id_psychologist = ?", owner).Delete(&model.ProgramPage{}).Error
}

func (p *ProgramStore) ShiftDown(ctx context.Context, owner uint, after int) error {
	return p.shift(ctx, owner, after, "sequence - 1")
}

func (p *ProgramStore) ShiftUp(ctx context.Context, owner uint, after int) error {
	return p.shift(ctx, owner, after, "sequence + 1")
}

func (p *ProgramStore) shift(ctx context.Context, owner uint, after int, expr string) error {
	return p.getDB(ctx).WithContext(ctx).Model(&model.ProgramPage{}).
		Where("id_psychologist = ? AND generated = ? AND sequence > ?", owner, false, after).
		UpdateColumn("sequence", gorm.Expr(expr)).Error
}

func (p *ProgramStore) UpdateGroupSequence(ctx context.Context, group uuid.UUID, sequence int) error {
	return affected(p.getDB(ctx).WithContext(ctx).Model(&model.ProgramPage{}).
		Where("group_id = ?", group).
		UpdateColumn("sequence", sequence))
}

func (p *ProgramStore) Generated(ctx context.Context, owner uint) (*model.ProgramPage, error) {
	var page model.ProgramPage
	err := p.getDB(ctx).WithContext(ctx).
		Where("id_psychologist = ? AND generated = ?", owner, true).
		Order("id DESC").
		First(&page).Error
	if err != nil {
		return nil, translate(err)
	}
	return &page, nil
}

// DeleteGenerated removes the merged artifacts of the owner and returns the deleted rows so
// the caller can drop their objects.
func (p *ProgramStore) DeleteGenerated(ctx context.Context, owner uint) (model.ProgramPageList, error) {
	pages, err := p.List(ctx, NewProgramQueryFilter().ByOwner(owner).ByGenerated(true))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	if err := p.getDB(ctx).WithContext(ctx).Where("id_psychologist = ? AND generated = ?", owner, true).Delete(&model.ProgramPage{}).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (p *ProgramStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return p.db
}
