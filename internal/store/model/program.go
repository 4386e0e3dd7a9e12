package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	RolePDF   = "pdf"
	RoleCover = "cover"

	// GeneratedSequence marks the merged artifact of an owner.
	GeneratedSequence = -1
)

// ProgramPage is one stored object of a psychologist's program packet. Uploaded documents
// are stored as two rows sharing GroupID: the PDF page and its cover thumbnail.
type ProgramPage struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Name           string    `gorm:"not null;index"`
	Filename       string    `gorm:"not null"`
	Path           string    `gorm:"not null"`
	GroupID        uuid.UUID `gorm:"column:group_id;type:VARCHAR(36);not null;index"`
	Role           string    `gorm:"type:VARCHAR(16);not null"`
	Sequence       int       `gorm:"not null"`
	Generated      bool      `gorm:"not null;default:false"`
	PsychologistID uint      `gorm:"column:id_psychologist;not null;index"`
}

func (ProgramPage) TableName() string {
	return "programs_upload"
}

type ProgramPageList []ProgramPage

// Key is the object key of the page in the programs bucket.
func (p ProgramPage) Key() string {
	return fmt.Sprintf("%s/%s", p.Path, p.Name)
}

func (p ProgramPage) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

// NewProgramPage builds a non persisted page row for the given group and role.
func NewProgramPage(owner uint, filename string, group uuid.UUID, role string, sequence int) ProgramPage {
	ext := "pdf"
	if role == RoleCover {
		ext = "png"
	}
	return ProgramPage{
		Name:           fmt.Sprintf("%s.%s", group, ext),
		Filename:       filename,
		Path:           fmt.Sprintf("%d/%s/%s", owner, group, role),
		GroupID:        group,
		Role:           role,
		Sequence:       sequence,
		PsychologistID: owner,
	}
}

// NewGeneratedPage builds the row of a merged artifact.
func NewGeneratedPage(owner uint, group uuid.UUID) ProgramPage {
	p := NewProgramPage(owner, "report", group, RolePDF, GeneratedSequence)
	p.Generated = true
	return p
}
