package mappers

import (
	"time"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
)

func dateOrNil(d *v1alpha1.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func PsychologistFormApi(resource v1alpha1.PsychologistCreate) mappers.PsychologistForm {
	return mappers.PsychologistForm{
		Name:      resource.Name,
		BirthDate: resource.BirthDate.Time,
		Crp:       resource.Crp,
	}
}

func PatientFormApi(resource v1alpha1.PatientCreate) mappers.PatientForm {
	return mappers.PatientForm{
		Name:             resource.Name,
		BirthDate:        resource.BirthDate.Time,
		Gender:           resource.Gender,
		PsychologistID:   resource.IdPsychologist,
		Father:           resource.Father,
		FatherProfession: resource.FatherProfession,
		Mother:           resource.Mother,
		MotherProfession: resource.MotherProfession,
	}
}

func PatientRecordFormApi(resource v1alpha1.PatientRecordCreate) mappers.PatientRecordForm {
	return mappers.PatientRecordForm{
		PatientID:         resource.IdPatient,
		DemandDescription: resource.DemandDescription,
		InstrumentsUsed:   resource.InstrumentsUsed,
		IdadiAnalysis:     resource.IdadiAnalysis,
		AnamneseAnalysis:  resource.AnamneseAnalysis,
		AnamneseResult:    resource.AnamneseResult,
		Conclusion:        resource.Conclusion,
	}
}

func PatientRecordUpdateFormApi(resource v1alpha1.PatientRecordUpdate) mappers.PatientRecordForm {
	return mappers.PatientRecordForm{
		DemandDescription: resource.DemandDescription,
		InstrumentsUsed:   resource.InstrumentsUsed,
		IdadiAnalysis:     resource.IdadiAnalysis,
		AnamneseAnalysis:  resource.AnamneseAnalysis,
		AnamneseResult:    resource.AnamneseResult,
		Conclusion:        resource.Conclusion,
	}
}

func PtiFormApi(resource v1alpha1.PtiCreate) mappers.PtiForm {
	return mappers.PtiForm{
		PatientID:      resource.IdPatient,
		EvaluationDate: dateOrNil(resource.EvaluationDate),
	}
}

func PtiFullInsertFormApi(resource v1alpha1.PtiFullInsert) mappers.PtiForm {
	form := mappers.PtiForm{
		PatientID:      resource.IdPatient,
		EvaluationDate: dateOrNil(resource.EvaluationDate),
	}
	for _, a := range resource.StimulusAreas {
		area := mappers.StimulusAreaForm{Name: a.Name}
		for _, t := range a.Topics {
			area.Topics = append(area.Topics, mappers.TopicForm{Name: t.Name, Subtopics: t.Subtopics})
		}
		form.Areas = append(form.Areas, area)
	}
	return form
}

func IdadiFormApi(resource v1alpha1.IdadiCreate) mappers.IdadiForm {
	form := mappers.IdadiForm{
		PatientID:       resource.IdPatient,
		ProtocolAge:     resource.ProtocolAge,
		ApplicationDate: dateOrNil(resource.ApplicationDate),
	}
	for _, v := range resource.Values {
		form.Values = append(form.Values, mappers.IdadiValueForm{
			DomainID:      v.IdDomain,
			RawScore:      v.RawScore,
			StandardScore: v.StandardScore,
		})
	}
	return form
}

func IdadiUpdateFormApi(resource v1alpha1.IdadiUpdate) mappers.IdadiForm {
	form := mappers.IdadiForm{
		PatientID:       resource.IdPatient,
		ProtocolAge:     resource.ProtocolAge,
		ApplicationDate: dateOrNil(resource.ApplicationDate),
	}
	for _, v := range resource.Values {
		form.Values = append(form.Values, mappers.IdadiValueForm{
			ID:            v.Id,
			DomainID:      v.IdDomain,
			RawScore:      v.RawScore,
			StandardScore: v.StandardScore,
		})
	}
	return form
}

func PageOrdersApi(resource v1alpha1.ProgramOrdering) []service.PageOrder {
	orders := make([]service.PageOrder, 0, len(resource.Pages))
	for _, p := range resource.Pages {
		orders = append(orders, service.PageOrder{ID: p.Id, Name: p.Name, Sequence: p.Sequence})
	}
	return orders
}
