package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

func apply(tx *gorm.DB, fns []func(tx *gorm.DB) *gorm.DB) *gorm.DB {
	for _, fn := range fns {
		tx = fn(tx)
	}
	return tx
}

// QueryOptions carries ordering and pagination shared by the list queries.
type QueryOptions BaseQuerier

func NewQueryOptions() *QueryOptions {
	return &QueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *QueryOptions) WithPagination(offset, limit int) *QueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if offset > 0 {
			tx = tx.Offset(offset)
		}
		if limit > 0 {
			tx = tx.Limit(limit)
		}
		return tx
	})
	return o
}

func (o *QueryOptions) WithOrder(column string) *QueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Order(column)
	})
	return o
}

type PsychologistQueryFilter BaseQuerier

func NewPsychologistQueryFilter() *PsychologistQueryFilter {
	return &PsychologistQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *PsychologistQueryFilter) ByNameOrCrp(name, crp string) *PsychologistQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ? OR crp = ?", name, crp)
	})
	return f
}

func (f *PsychologistQueryFilter) ExcludingID(id uint) *PsychologistQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id <> ?", id)
	})
	return f
}

type PatientQueryFilter BaseQuerier

func NewPatientQueryFilter() *PatientQueryFilter {
	return &PatientQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *PatientQueryFilter) ByPsychologist(id uint) *PatientQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id_psychologist = ?", id)
	})
	return f
}

func (f *PatientQueryFilter) ByNameAndBirthDate(name string, birthDate time.Time) *PatientQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name = ? AND birth_date = ?", name, birthDate)
	})
	return f
}

type ProgramQueryFilter BaseQuerier

func NewProgramQueryFilter() *ProgramQueryFilter {
	return &ProgramQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (f *ProgramQueryFilter) ByOwner(owner uint) *ProgramQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id_psychologist = ?", owner)
	})
	return f
}

func (f *ProgramQueryFilter) ByRole(role string) *ProgramQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("role = ?", role)
	})
	return f
}

func (f *ProgramQueryFilter) ByGenerated(generated bool) *ProgramQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("generated = ?", generated)
	})
	return f
}

func (f *ProgramQueryFilter) ByGroup(group uuid.UUID) *ProgramQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("group_id = ?", group)
	})
	return f
}

func (f *ProgramQueryFilter) ByNames(names []string) *ProgramQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("name IN ?", names)
	})
	return f
}

// NodeQueryFilter filters the named nodes of the PTI tree.
type NodeQueryFilter BaseQuerier

func NewNodeQueryFilter() *NodeQueryFilter {
	return &NodeQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

// ByName matches case-insensitively.
func (f *NodeQueryFilter) ByName(name string) *NodeQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("LOWER(name) = ?", strings.ToLower(name))
	})
	return f
}

func (f *NodeQueryFilter) ByParent(column string, id uint) *NodeQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where(column+" = ?", id)
	})
	return f
}

func (f *NodeQueryFilter) ExcludingID(id uint) *NodeQueryFilter {
	f.QueryFn = append(f.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id <> ?", id)
	})
	return f
}
