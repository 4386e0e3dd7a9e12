package model

import (
	"time"
)

type Idadi struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
	ProtocolAge     int       `gorm:"not null"`
	ApplicationDate time.Time `gorm:"not null"`
	PatientID       uint      `gorm:"column:id_patient;not null;index"`

	Values []IdadiValue `gorm:"foreignKey:IdadiID;references:ID"`
}

func (Idadi) TableName() string {
	return "idadi"
}

type IdadiValue struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	RawScore      int       `gorm:"not null"`
	StandardScore int       `gorm:"not null"`
	DomainID      uint      `gorm:"column:id_domain;not null"`
	IdadiID       uint      `gorm:"column:id_idadi;not null;index"`
}

type IdadiDomain struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Name        string    `gorm:"type:TEXT;not null"`
	Description string
}

type IdadiNormativeTable struct {
	ID                      uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt               time.Time `gorm:"not null"`
	UpdatedAt               time.Time `gorm:"not null"`
	InitialAgeRange         int
	FinalAgeRange           int
	RawScore                int
	DevelopmentalScore      float64
	LowerConfidenceInterval float64
	UpperConfidenceInterval float64
	Z                       float64
	Standardized            int
	See                     float64
	Information             float64
	DomainID                uint `gorm:"column:id_domain;not null;index"`
}
