package model

import (
	"time"
)

type Pti struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	PatientID      uint      `gorm:"column:id_patient;not null;index"`
	EvaluationDate time.Time `gorm:"not null"`

	StimulusAreas []PtiStimulusArea `gorm:"foreignKey:PtiID;references:ID"`
}

func (Pti) TableName() string {
	return "pti"
}

type PtiStimulusArea struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Name      string    `gorm:"not null"`
	PtiID     uint      `gorm:"column:id_pti;not null;index"`

	Topics []PtiTopic `gorm:"foreignKey:StimulusAreaID;references:ID"`
}

func (PtiStimulusArea) TableName() string {
	return "pti_stimulus_areas"
}

type PtiTopic struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Name           string    `gorm:"not null"`
	StimulusAreaID uint      `gorm:"column:id_pti_stimulus_area;not null;index"`

	Subtopics []PtiSubtopic `gorm:"foreignKey:TopicID;references:ID"`
}

func (PtiTopic) TableName() string {
	return "pti_specific_objectives_topics"
}

type PtiSubtopic struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Name      string    `gorm:"not null"`
	TopicID   uint      `gorm:"column:id_pti_specific_objectives_topics;not null;index"`
}

func (PtiSubtopic) TableName() string {
	return "pti_specific_objectives_subtopics"
}
