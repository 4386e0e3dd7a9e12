package mappers

import (
	"time"

	"github.com/ranis-junior/psychology-reports/internal/store/model"
)

type PsychologistForm struct {
	Name      string
	BirthDate time.Time
	Crp       string
}

func (f PsychologistForm) ToModel() model.Psychologist {
	return model.Psychologist{
		Name:      f.Name,
		BirthDate: f.BirthDate,
		Crp:       f.Crp,
	}
}

type PatientForm struct {
	Name             string
	BirthDate        time.Time
	Gender           string
	PsychologistID   uint
	Father           *string
	FatherProfession *string
	Mother           *string
	MotherProfession *string
}

func (f PatientForm) ToModel() model.Patient {
	return model.Patient{
		Name:             f.Name,
		BirthDate:        f.BirthDate,
		Gender:           f.Gender,
		PsychologistID:   f.PsychologistID,
		Father:           f.Father,
		FatherProfession: f.FatherProfession,
		Mother:           f.Mother,
		MotherProfession: f.MotherProfession,
	}
}

type PatientRecordForm struct {
	PatientID         uint
	DemandDescription string
	InstrumentsUsed   string
	IdadiAnalysis     string
	AnamneseAnalysis  string
	AnamneseResult    string
	Conclusion        string
}

func (f PatientRecordForm) ToModel() model.PatientRecord {
	return model.PatientRecord{
		PatientID:         f.PatientID,
		DemandDescription: f.DemandDescription,
		InstrumentsUsed:   f.InstrumentsUsed,
		IdadiAnalysis:     f.IdadiAnalysis,
		AnamneseAnalysis:  f.AnamneseAnalysis,
		AnamneseResult:    f.AnamneseResult,
		Conclusion:        f.Conclusion,
	}
}

// PtiForm creates a pti. Areas is empty unless the whole tree is inserted at once.
type PtiForm struct {
	PatientID      uint
	EvaluationDate *time.Time
	Areas          []StimulusAreaForm
}

type StimulusAreaForm struct {
	Name   string
	Topics []TopicForm
}

type TopicForm struct {
	Name      string
	Subtopics []string
}

func (f PtiForm) ToModel(now time.Time) model.Pti {
	pti := model.Pti{
		PatientID:      f.PatientID,
		EvaluationDate: now,
	}
	if f.EvaluationDate != nil {
		pti.EvaluationDate = *f.EvaluationDate
	}

	for _, a := range f.Areas {
		area := model.PtiStimulusArea{Name: a.Name}
		for _, t := range a.Topics {
			topic := model.PtiTopic{Name: t.Name}
			for _, s := range t.Subtopics {
				topic.Subtopics = append(topic.Subtopics, model.PtiSubtopic{Name: s})
			}
			area.Topics = append(area.Topics, topic)
		}
		pti.StimulusAreas = append(pti.StimulusAreas, area)
	}
	return pti
}

// IdadiForm creates or updates an idadi. Nil fields are defaulted by the service.
type IdadiForm struct {
	PatientID       uint
	ProtocolAge     *int
	ApplicationDate *time.Time
	Values          []IdadiValueForm
}

type IdadiValueForm struct {
	ID            uint
	DomainID      uint
	RawScore      int
	StandardScore *int
}

func (f IdadiValueForm) ToModel() model.IdadiValue {
	v := model.IdadiValue{
		ID:       f.ID,
		DomainID: f.DomainID,
		RawScore: f.RawScore,
	}
	if f.StandardScore != nil {
		v.StandardScore = *f.StandardScore
	}
	return v
}
