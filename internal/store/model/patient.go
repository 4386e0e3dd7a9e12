package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Patient struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	Name             string    `gorm:"type:TEXT;not null"`
	BirthDate        time.Time `gorm:"type:DATE;not null"`
	Gender           string    `gorm:"type:TEXT;not null"`
	PsychologistID   uint      `gorm:"column:id_psychologist;not null;index"`
	Father           *string
	FatherProfession *string
	Mother           *string
	MotherProfession *string
	Photo            *string `gorm:"type:TEXT"`
}

type PatientList []Patient

func (p Patient) String() string {
	val, _ := json.Marshal(p)
	return string(val)
}

// PhotoPath is the object path holding the patient photo.
func (p Patient) PhotoPath() string {
	return fmt.Sprintf("%d", p.ID)
}

// AgeInMonths counts whole calendar months between the birth date and at.
func (p Patient) AgeInMonths(at time.Time) int {
	return (at.Year()-p.BirthDate.Year())*12 + int(at.Month()) - int(p.BirthDate.Month())
}

type PatientRecord struct {
	ID                uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
	DemandDescription string
	InstrumentsUsed   string
	IdadiAnalysis     string
	AnamneseAnalysis  string
	AnamneseResult    string
	Conclusion        string
	PatientID         uint `gorm:"column:id_patient;not null;uniqueIndex"`
}
