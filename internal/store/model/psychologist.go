package model

import (
	"encoding/json"
	"time"
)

type Psychologist struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Name      string    `gorm:"type:TEXT;not null"`
	BirthDate time.Time `gorm:"type:DATE;not null"`
	Crp       string    `gorm:"type:TEXT;not null"`
}

type PsychologistList []Psychologist

func (p Psychologist) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}
