package store

import (
	"context"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Psychologist() Psychologist
	Patient() Patient
	PatientRecord() PatientRecord
	Pti() Pti
	Idadi() Idadi
	Program() Program
	Statistics(ctx context.Context) (model.Statistics, error)
	InitialMigration(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db            *gorm.DB
	log           logrus.FieldLogger
	psychologist  Psychologist
	patient       Patient
	patientRecord PatientRecord
	pti           Pti
	idadi         Idadi
	program       Program
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:            db,
		log:           logrus.New().WithField("pkg", "store"),
		psychologist:  NewPsychologistStore(db),
		patient:       NewPatientStore(db),
		patientRecord: NewPatientRecordStore(db),
		pti:           NewPtiStore(db),
		idadi:         NewIdadiStore(db),
		program:       NewProgramStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db, s.log)
}

func (s *DataStore) Psychologist() Psychologist {
	return s.psychologist
}

func (s *DataStore) Patient() Patient {
	return s.patient
}

func (s *DataStore) PatientRecord() PatientRecord {
	return s.patientRecord
}

func (s *DataStore) Pti() Pti {
	return s.pti
}

func (s *DataStore) Idadi() Idadi {
	return s.idadi
}

func (s *DataStore) Program() Program {
	return s.program
}

func (s *DataStore) Statistics(ctx context.Context) (model.Statistics, error) {
	var stats model.Statistics
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Psychologist{}).Count(&stats.Psychologists).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.Patient{}).Count(&stats.Patients).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.ProgramPage{}).Where("generated = ?", false).Count(&stats.ProgramPages).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.ProgramPage{}).Where("generated = ?", true).Count(&stats.GeneratedPrograms).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// InitialMigration creates the schema from the models. Production databases are migrated with
// the sql files applied by pkg/migrations.
func (s *DataStore) InitialMigration(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.Psychologist{},
		&model.Patient{},
		&model.PatientRecord{},
		&model.Pti{},
		&model.PtiStimulusArea{},
		&model.PtiTopic{},
		&model.PtiSubtopic{},
		&model.IdadiDomain{},
		&model.IdadiNormativeTable{},
		&model.Idadi{},
		&model.IdadiValue{},
		&model.ProgramPage{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
