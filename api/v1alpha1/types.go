package v1alpha1

import (
	"time"
)

type Psychologist struct {
	Id        uint      `json:"id"`
	Name      string    `json:"name"`
	BirthDate Date      `json:"birth_date"`
	Crp       string    `json:"crp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PsychologistCreate struct {
	Name      string `json:"name" validate:"required,person_name,max=255"`
	BirthDate Date   `json:"birth_date" validate:"past_date"`
	Crp       string `json:"crp" validate:"required,crp"`
}

type PsychologistUpdate = PsychologistCreate

type Patient struct {
	Id               uint      `json:"id"`
	Name             string    `json:"name"`
	BirthDate        Date      `json:"birth_date"`
	Gender           string    `json:"gender"`
	IdPsychologist   uint      `json:"id_psychologist"`
	Father           *string   `json:"father,omitempty"`
	FatherProfession *string   `json:"father_profession,omitempty"`
	Mother           *string   `json:"mother,omitempty"`
	MotherProfession *string   `json:"mother_profession,omitempty"`
	Photo            *string   `json:"photo,omitempty"`
	PhotoUrl         *string   `json:"photo_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PatientCreate struct {
	Name             string  `json:"name" validate:"required,person_name,max=255"`
	BirthDate        Date    `json:"birth_date" validate:"past_date"`
	Gender           string  `json:"gender" validate:"required,oneof=M F O"`
	IdPsychologist   uint    `json:"id_psychologist" validate:"required"`
	Father           *string `json:"father,omitempty" validate:"omitempty,max=255"`
	FatherProfession *string `json:"father_profession,omitempty" validate:"omitempty,max=255"`
	Mother           *string `json:"mother,omitempty" validate:"omitempty,max=255"`
	MotherProfession *string `json:"mother_profession,omitempty" validate:"omitempty,max=255"`
}

type PatientUpdate = PatientCreate

type PatientRecord struct {
	Id                uint      `json:"id"`
	IdPatient         uint      `json:"id_patient"`
	DemandDescription string    `json:"demand_description"`
	InstrumentsUsed   string    `json:"instruments_used"`
	IdadiAnalysis     string    `json:"idadi_analysis"`
	AnamneseAnalysis  string    `json:"anamnese_analysis"`
	AnamneseResult    string    `json:"anamnese_result"`
	Conclusion        string    `json:"conclusion"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type PatientRecordCreate struct {
	IdPatient         uint   `json:"id_patient" validate:"required"`
	DemandDescription string `json:"demand_description"`
	InstrumentsUsed   string `json:"instruments_used"`
	IdadiAnalysis     string `json:"idadi_analysis"`
	AnamneseAnalysis  string `json:"anamnese_analysis"`
	AnamneseResult    string `json:"anamnese_result"`
	Conclusion        string `json:"conclusion"`
}

type PatientRecordUpdate struct {
	DemandDescription string `json:"demand_description"`
	InstrumentsUsed   string `json:"instruments_used"`
	IdadiAnalysis     string `json:"idadi_analysis"`
	AnamneseAnalysis  string `json:"anamnese_analysis"`
	AnamneseResult    string `json:"anamnese_result"`
	Conclusion        string `json:"conclusion"`
}

type Pti struct {
	Id             uint           `json:"id"`
	IdPatient      uint           `json:"id_patient"`
	EvaluationDate Date           `json:"evaluation_date"`
	StimulusAreas  []StimulusArea `json:"stimulus_areas"`
}

type PtiCreate struct {
	IdPatient      uint  `json:"id_patient" validate:"required"`
	EvaluationDate *Date `json:"evaluation_date,omitempty"`
}

// PtiFullInsert carries a whole PTI tree.
type PtiFullInsert struct {
	IdPatient      uint                 `json:"id_patient" validate:"required"`
	EvaluationDate *Date                `json:"evaluation_date,omitempty"`
	StimulusAreas  []StimulusAreaInsert `json:"stimulus_areas" validate:"dive"`
}

type StimulusAreaInsert struct {
	Name   string        `json:"name" validate:"required,node_name"`
	Topics []TopicInsert `json:"topics" validate:"dive"`
}

type TopicInsert struct {
	Name      string   `json:"name" validate:"required,node_name"`
	Subtopics []string `json:"subtopics" validate:"dive,required,node_name"`
}

type StimulusArea struct {
	Id     uint    `json:"id"`
	IdPti  uint    `json:"id_pti"`
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}

type StimulusAreaCreate struct {
	IdPti uint   `json:"id_pti" validate:"required"`
	Name  string `json:"name" validate:"required,node_name"`
}

type Topic struct {
	Id             uint       `json:"id"`
	IdStimulusArea uint       `json:"id_pti_stimulus_area"`
	Name           string     `json:"name"`
	Subtopics      []Subtopic `json:"subtopics"`
}

type TopicCreate struct {
	IdStimulusArea uint   `json:"id_pti_stimulus_area" validate:"required"`
	Name           string `json:"name" validate:"required,node_name"`
}

type Subtopic struct {
	Id      uint   `json:"id"`
	IdTopic uint   `json:"id_pti_specific_objectives_topics"`
	Name    string `json:"name"`
}

type SubtopicCreate struct {
	IdTopic uint   `json:"id_pti_specific_objectives_topics" validate:"required"`
	Name    string `json:"name" validate:"required,node_name"`
}

// NodeRename renames a stimulus area, topic or subtopic.
type NodeRename struct {
	Name string `json:"name" validate:"required,node_name"`
}

type Idadi struct {
	Id              uint         `json:"id"`
	IdPatient       uint         `json:"id_patient"`
	ProtocolAge     int          `json:"protocol_age"`
	ApplicationDate Date         `json:"application_date"`
	Values          []IdadiValue `json:"values"`
}

type IdadiValue struct {
	Id            uint `json:"id"`
	IdDomain      uint `json:"id_domain"`
	RawScore      int  `json:"raw_score"`
	StandardScore int  `json:"standard_score"`
}

type IdadiCreate struct {
	IdPatient       uint               `json:"id_patient" validate:"required"`
	ProtocolAge     *int               `json:"protocol_age,omitempty" validate:"omitempty,gte=0"`
	ApplicationDate *Date              `json:"application_date,omitempty"`
	Values          []IdadiValueCreate `json:"values" validate:"dive"`
}

type IdadiValueCreate struct {
	IdDomain      uint `json:"id_domain" validate:"required"`
	RawScore      int  `json:"raw_score" validate:"gte=0"`
	StandardScore *int `json:"standard_score,omitempty" validate:"omitempty,gte=0"`
}

type IdadiUpdate struct {
	IdPatient       uint               `json:"id_patient" validate:"required"`
	ProtocolAge     *int               `json:"protocol_age,omitempty" validate:"omitempty,gte=0"`
	ApplicationDate *Date              `json:"application_date,omitempty"`
	Values          []IdadiValueUpdate `json:"values" validate:"dive"`
}

type IdadiValueUpdate struct {
	Id            uint `json:"id" validate:"required"`
	IdDomain      uint `json:"id_domain" validate:"required"`
	RawScore      int  `json:"raw_score" validate:"gte=0"`
	StandardScore *int `json:"standard_score,omitempty" validate:"omitempty,gte=0"`
}

type IdadiDomain struct {
	Id          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ReportTask struct {
	TaskId string `json:"task_id"`
}

// ReportStatus is the answer of a report status poll.
type ReportStatus struct {
	TaskId string  `json:"task_id"`
	Status string  `json:"status"`
	Url    *string `json:"url,omitempty"`
	Error  *string `json:"error,omitempty"`
}

type ProgramDocument struct {
	Id       uint   `json:"id"`
	IdCover  uint   `json:"id_cover"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
	GroupId  string `json:"group_id"`
	Sequence int    `json:"sequence"`
	PdfUrl   string `json:"pdf_url"`
	CoverUrl string `json:"cover_url"`
}

type ImageLinks struct {
	Links []string `json:"links" validate:"required,min=1,dive,required,http_url"`
}

type PageOrder struct {
	Id       uint   `json:"id"`
	Name     string `json:"name" validate:"required"`
	Sequence int    `json:"sequence" validate:"gte=0"`
}

// ProgramOrdering is the ordering submitted for generation or reorder.
type ProgramOrdering struct {
	Pages []PageOrder `json:"pages" validate:"dive"`
}

type GeneratedProgram struct {
	Id          uint   `json:"id"`
	Name        string `json:"name"`
	Url         string `json:"url"`
	Regenerated bool   `json:"regenerated"`
}
