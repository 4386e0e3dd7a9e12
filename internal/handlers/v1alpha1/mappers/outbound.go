package mappers

import (
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
)

func PsychologistToApi(p model.Psychologist) v1alpha1.Psychologist {
	return v1alpha1.Psychologist{
		Id:        p.ID,
		Name:      p.Name,
		BirthDate: v1alpha1.NewDate(p.BirthDate),
		Crp:       p.Crp,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PsychologistListToApi(list model.PsychologistList) []v1alpha1.Psychologist {
	out := make([]v1alpha1.Psychologist, 0, len(list))
	for _, p := range list {
		out = append(out, PsychologistToApi(p))
	}
	return out
}

func PatientToApi(p model.Patient) v1alpha1.Patient {
	return v1alpha1.Patient{
		Id:               p.ID,
		Name:             p.Name,
		BirthDate:        v1alpha1.NewDate(p.BirthDate),
		Gender:           p.Gender,
		IdPsychologist:   p.PsychologistID,
		Father:           p.Father,
		FatherProfession: p.FatherProfession,
		Mother:           p.Mother,
		MotherProfession: p.MotherProfession,
		Photo:            p.Photo,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func PatientViewToApi(v service.PatientView) v1alpha1.Patient {
	patient := PatientToApi(v.Patient)
	patient.PhotoUrl = v.PhotoURL
	return patient
}

func PatientViewListToApi(views []service.PatientView) []v1alpha1.Patient {
	out := make([]v1alpha1.Patient, 0, len(views))
	for _, v := range views {
		out = append(out, PatientViewToApi(v))
	}
	return out
}

func PatientListToApi(list model.PatientList) []v1alpha1.Patient {
	out := make([]v1alpha1.Patient, 0, len(list))
	for _, p := range list {
		out = append(out, PatientToApi(p))
	}
	return out
}

func PatientRecordToApi(r model.PatientRecord) v1alpha1.PatientRecord {
	return v1alpha1.PatientRecord{
		Id:                r.ID,
		IdPatient:         r.PatientID,
		DemandDescription: r.DemandDescription,
		InstrumentsUsed:   r.InstrumentsUsed,
		IdadiAnalysis:     r.IdadiAnalysis,
		AnamneseAnalysis:  r.AnamneseAnalysis,
		AnamneseResult:    r.AnamneseResult,
		Conclusion:        r.Conclusion,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func PtiToApi(p model.Pti) v1alpha1.Pti {
	pti := v1alpha1.Pti{
		Id:             p.ID,
		IdPatient:      p.PatientID,
		EvaluationDate: v1alpha1.NewDate(p.EvaluationDate),
		StimulusAreas:  make([]v1alpha1.StimulusArea, 0, len(p.StimulusAreas)),
	}
	for _, a := range p.StimulusAreas {
		pti.StimulusAreas = append(pti.StimulusAreas, StimulusAreaToApi(a))
	}
	return pti
}

func PtiListToApi(list []model.Pti) []v1alpha1.Pti {
	out := make([]v1alpha1.Pti, 0, len(list))
	for _, p := range list {
		out = append(out, PtiToApi(p))
	}
	return out
}

func StimulusAreaToApi(a model.PtiStimulusArea) v1alpha1.StimulusArea {
	area := v1alpha1.StimulusArea{
		Id:     a.ID,
		IdPti:  a.PtiID,
		Name:   a.Name,
		Topics: make([]v1alpha1.Topic, 0, len(a.Topics)),
	}
	for _, t := range a.Topics {
		area.Topics = append(area.Topics, TopicToApi(t))
	}
	return area
}

func StimulusAreaListToApi(list []model.PtiStimulusArea) []v1alpha1.StimulusArea {
	out := make([]v1alpha1.StimulusArea, 0, len(list))
	for _, a := range list {
		out = append(out, StimulusAreaToApi(a))
	}
	return out
}

func TopicToApi(t model.PtiTopic) v1alpha1.Topic {
	topic := v1alpha1.Topic{
		Id:             t.ID,
		IdStimulusArea: t.StimulusAreaID,
		Name:           t.Name,
		Subtopics:      make([]v1alpha1.Subtopic, 0, len(t.Subtopics)),
	}
	for _, s := range t.Subtopics {
		topic.Subtopics = append(topic.Subtopics, SubtopicToApi(s))
	}
	return topic
}

func TopicListToApi(list []model.PtiTopic) []v1alpha1.Topic {
	out := make([]v1alpha1.Topic, 0, len(list))
	for _, t := range list {
		out = append(out, TopicToApi(t))
	}
	return out
}

func SubtopicToApi(s model.PtiSubtopic) v1alpha1.Subtopic {
	return v1alpha1.Subtopic{Id: s.ID, IdTopic: s.TopicID, Name: s.Name}
}

func SubtopicListToApi(list []model.PtiSubtopic) []v1alpha1.Subtopic {
	out := make([]v1alpha1.Subtopic, 0, len(list))
	for _, s := range list {
		out = append(out, SubtopicToApi(s))
	}
	return out
}

func IdadiToApi(i model.Idadi) v1alpha1.Idadi {
	idadi := v1alpha1.Idadi{
		Id:              i.ID,
		IdPatient:       i.PatientID,
		ProtocolAge:     i.ProtocolAge,
		ApplicationDate: v1alpha1.NewDate(i.ApplicationDate),
		Values:          make([]v1alpha1.IdadiValue, 0, len(i.Values)),
	}
	for _, v := range i.Values {
		idadi.Values = append(idadi.Values, v1alpha1.IdadiValue{
			Id:            v.ID,
			IdDomain:      v.DomainID,
			RawScore:      v.RawScore,
			StandardScore: v.StandardScore,
		})
	}
	return idadi
}

func IdadiDomainListToApi(list []model.IdadiDomain) []v1alpha1.IdadiDomain {
	out := make([]v1alpha1.IdadiDomain, 0, len(list))
	for _, d := range list {
		out = append(out, v1alpha1.IdadiDomain{Id: d.ID, Name: d.Name, Description: d.Description})
	}
	return out
}

func ReportStatusToApi(p report.Poll) v1alpha1.ReportStatus {
	status := v1alpha1.ReportStatus{TaskId: p.TaskID, Status: string(p.Status)}
	if p.Result != "" {
		status.Url = &p.Result
	}
	if p.Error != "" {
		status.Error = &p.Error
	}
	return status
}

func ProgramDocumentListToApi(docs []service.ProgramDocument) []v1alpha1.ProgramDocument {
	out := make([]v1alpha1.ProgramDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, v1alpha1.ProgramDocument{
			Id:       d.ID,
			IdCover:  d.CoverID,
			Name:     d.Name,
			Filename: d.Filename,
			GroupId:  d.GroupID.String(),
			Sequence: d.Sequence,
			PdfUrl:   d.PDFURL,
			CoverUrl: d.CoverURL,
		})
	}
	return out
}

func GeneratedProgramToApi(g service.GeneratedProgram) v1alpha1.GeneratedProgram {
	return v1alpha1.GeneratedProgram{Id: g.ID, Name: g.Name, Url: g.URL, Regenerated: g.Regenerated}
}
