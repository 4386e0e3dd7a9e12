package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

const (
	ptiArea     = "stimulus area"
	ptiTopic    = "topic"
	ptiSubtopic = "subtopic"
)

type PtiService struct {
	store  store.Store
	now    func() time.Time
	logger *log.StructuredLogger
}

func NewPtiService(s store.Store) *PtiService {
	return &PtiService{
		store:  s,
		now:    time.Now,
		logger: log.NewDebugLogger("pti_service"),
	}
}

// Create starts an empty pti for the patient. FullInsert is used to create it with its tree.
func (ps *PtiService) Create(ctx context.Context, form mappers.PtiForm) (*model.Pti, error) {
	form.Areas = nil
	return ps.create(ctx, form)
}

// FullInsert creates the pti and every area, topic and subtopic in one transaction.
func (ps *PtiService) FullInsert(ctx context.Context, form mappers.PtiForm) (*model.Pti, error) {
	tracer := ps.logger.WithContext(ctx).Operation("pti_full_insert").
		WithUint("patient_id", form.PatientID).
		WithInt("areas", len(form.Areas)).
		Build()

	if err := validateTree(form.Areas); err != nil {
		return nil, err
	}

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	pti, err := ps.create(ctx, form)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	tracer.Success().WithUint("pti_id", pti.ID).Log()
	return pti, nil
}

func (ps *PtiService) create(ctx context.Context, form mappers.PtiForm) (*model.Pti, error) {
	if _, err := ps.store.Patient().Get(ctx, form.PatientID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPatientNotFound(form.PatientID)
		}
		return nil, err
	}

	if _, err := ps.store.Pti().GetByPatient(ctx, form.PatientID); err == nil {
		return nil, NewErrConflict("patient %d already has a pti", form.PatientID)
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	return ps.store.Pti().Create(ctx, form.ToModel(ps.now()))
}

func validateTree(areas []mappers.StimulusAreaForm) error {
	if err := uniqueNames(ptiArea, namesOf(areas, func(a mappers.StimulusAreaForm) string { return a.Name })); err != nil {
		return err
	}
	for _, a := range areas {
		if err := uniqueNames(ptiTopic, namesOf(a.Topics, func(t mappers.TopicForm) string { return t.Name })); err != nil {
			return err
		}
		for _, t := range a.Topics {
			if err := uniqueNames(ptiSubtopic, t.Subtopics); err != nil {
				return err
			}
		}
	}
	return nil
}

func namesOf[T any](items []T, name func(T) string) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, name(item))
	}
	return names
}

func uniqueNames(kind string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			return NewErrBadRequest("%s name is required", kind)
		}
		if _, ok := seen[key]; ok {
			return NewErrConflict("%s %q is repeated", kind, n)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (ps *PtiService) List(ctx context.Context) ([]model.Pti, error) {
	return ps.store.Pti().List(ctx)
}

func (ps *PtiService) Get(ctx context.Context, id uint) (*model.Pti, error) {
	pti, err := ps.store.Pti().Get(ctx, id)
	if err != nil {
		return nil, notFound(err, id, "pti")
	}
	return pti, nil
}

func (ps *PtiService) GetByPatient(ctx context.Context, patientID uint) (*model.Pti, error) {
	pti, err := ps.store.Pti().GetByPatient(ctx, patientID)
	if err != nil {
		return nil, notFound(err, patientID, "pti of patient")
	}
	return pti, nil
}

// Delete removes subtopics, topics, stimulus areas and then the pti.
func (ps *PtiService) Delete(ctx context.Context, id uint) error {
	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.store.Pti().Delete(ctx, id); err != nil {
		return notFound(err, id, "pti")
	}
	_, err = store.Commit(ctx)
	return err
}

func (ps *PtiService) ListAreas(ctx context.Context, ptiID *uint) ([]model.PtiStimulusArea, error) {
	filter := store.NewNodeQueryFilter()
	if ptiID != nil {
		filter = filter.ByParent("id_pti", *ptiID)
	}
	return ps.store.Pti().ListAreas(ctx, filter)
}

func (ps *PtiService) GetArea(ctx context.Context, id uint) (*model.PtiStimulusArea, error) {
	area, err := ps.store.Pti().GetArea(ctx, id)
	if err != nil {
		return nil, notFound(err, id, ptiArea)
	}
	return area, nil
}

func (ps *PtiService) CreateArea(ctx context.Context, ptiID uint, name string) (*model.PtiStimulusArea, error) {
	if _, err := ps.Get(ctx, ptiID); err != nil {
		return nil, err
	}
	if err := ps.ensureAreaName(ctx, ptiID, name, 0); err != nil {
		return nil, err
	}
	return ps.store.Pti().CreateArea(ctx, model.PtiStimulusArea{PtiID: ptiID, Name: name})
}

func (ps *PtiService) RenameArea(ctx context.Context, id uint, name string) (*model.PtiStimulusArea, error) {
	area, err := ps.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.ensureAreaName(ctx, area.PtiID, name, id); err != nil {
		return nil, err
	}
	renamed, err := ps.store.Pti().RenameArea(ctx, id, name)
	if err != nil {
		return nil, notFound(err, id, ptiArea)
	}
	return renamed, nil
}

// DeleteArea removes the area after its topics and subtopics.
func (ps *PtiService) DeleteArea(ctx context.Context, id uint) error {
	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.store.Pti().DeleteArea(ctx, id); err != nil {
		return notFound(err, id, ptiArea)
	}
	_, err = store.Commit(ctx)
	return err
}

func (ps *PtiService) ListTopics(ctx context.Context, areaID *uint) ([]model.PtiTopic, error) {
	filter := store.NewNodeQueryFilter()
	if areaID != nil {
		filter = filter.ByParent("id_pti_stimulus_area", *areaID)
	}
	return ps.store.Pti().ListTopics(ctx, filter)
}

func (ps *PtiService) GetTopic(ctx context.Context, id uint) (*model.PtiTopic, error) {
	topic, err := ps.store.Pti().GetTopic(ctx, id)
	if err != nil {
		return nil, notFound(err, id, ptiTopic)
	}
	return topic, nil
}

func (ps *PtiService) CreateTopic(ctx context.Context, areaID uint, name string) (*model.PtiTopic, error) {
	if _, err := ps.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	if err := ps.ensureTopicName(ctx, areaID, name, 0); err != nil {
		return nil, err
	}
	return ps.store.Pti().CreateTopic(ctx, model.PtiTopic{StimulusAreaID: areaID, Name: name})
}

func (ps *PtiService) RenameTopic(ctx context.Context, id uint, name string) (*model.PtiTopic, error) {
	topic, err := ps.GetTopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.ensureTopicName(ctx, topic.StimulusAreaID, name, id); err != nil {
		return nil, err
	}
	renamed, err := ps.store.Pti().RenameTopic(ctx, id, name)
	if err != nil {
		return nil, notFound(err, id, ptiTopic)
	}
	return renamed, nil
}

func (ps *PtiService) DeleteTopic(ctx context.Context, id uint) error {
	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.store.Pti().DeleteTopic(ctx, id); err != nil {
		return notFound(err, id, ptiTopic)
	}
	_, err = store.Commit(ctx)
	return err
}

func (ps *PtiService) ListSubtopics(ctx context.Context, topicID *uint) ([]model.PtiSubtopic, error) {
	filter := store.NewNodeQueryFilter()
	if topicID != nil {
		filter = filter.ByParent("id_pti_specific_objectives_topics", *topicID)
	}
	return ps.store.Pti().ListSubtopics(ctx, filter)
}

func (ps *PtiService) GetSubtopic(ctx context.Context, id uint) (*model.PtiSubtopic, error) {
	subtopic, err := ps.store.Pti().GetSubtopic(ctx, id)
	if err != nil {
		return nil, notFound(err, id, ptiSubtopic)
	}
	return subtopic, nil
}

func (ps *PtiService) CreateSubtopic(ctx context.Context, topicID uint, name string) (*model.PtiSubtopic, error) {
	if _, err := ps.GetTopic(ctx, topicID); err != nil {
		return nil, err
	}
	if err := ps.ensureSubtopicName(ctx, topicID, name, 0); err != nil {
		return nil, err
	}
	return ps.store.Pti().CreateSubtopic(ctx, model.PtiSubtopic{TopicID: topicID, Name: name})
}

func (ps *PtiService) RenameSubtopic(ctx context.Context, id uint, name string) (*model.PtiSubtopic, error) {
	subtopic, err := ps.GetSubtopic(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.ensureSubtopicName(ctx, subtopic.TopicID, name, id); err != nil {
		return nil, err
	}
	renamed, err := ps.store.Pti().RenameSubtopic(ctx, id, name)
	if err != nil {
		return nil, notFound(err, id, ptiSubtopic)
	}
	return renamed, nil
}

func (ps *PtiService) DeleteSubtopic(ctx context.Context, id uint) error {
	if err := ps.store.Pti().DeleteSubtopic(ctx, id); err != nil {
		return notFound(err, id, ptiSubtopic)
	}
	return nil
}

func (ps *PtiService) ensureAreaName(ctx context.Context, ptiID uint, name string, exclude uint) error {
	nodes, err := ps.store.Pti().ListAreas(ctx, nodeFilter("id_pti", ptiID, name, exclude))
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		return NewErrConflict("%s %q already exists in pti %d", ptiArea, name, ptiID)
	}
	return nil
}

func (ps *PtiService) ensureTopicName(ctx context.Context, areaID uint, name string, exclude uint) error {
	nodes, err := ps.store.Pti().ListTopics(ctx, nodeFilter("id_pti_stimulus_area", areaID, name, exclude))
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		return NewErrConflict("%s %q already exists in %s %d", ptiTopic, name, ptiArea, areaID)
	}
	return nil
}

func (ps *PtiService) ensureSubtopicName(ctx context.Context, topicID uint, name string, exclude uint) error {
	nodes, err := ps.store.Pti().ListSubtopics(ctx, nodeFilter("id_pti_specific_objectives_topics", topicID, name, exclude))
	if err != nil {
		return err
	}
	if len(nodes) > 0 {
		return NewErrConflict("%s %q already exists in %s %d", ptiSubtopic, name, ptiTopic, topicID)
	}
	return nil
}

func nodeFilter(parentColumn string, parent uint, name string, exclude uint) *store.NodeQueryFilter {
	filter := store.NewNodeQueryFilter().ByParent(parentColumn, parent).ByName(name)
	if exclude != 0 {
		filter = filter.ExcludingID(exclude)
	}
	return filter
}

func notFound(err error, id uint, kind string) error {
	if errors.Is(err, store.ErrRecordNotFound) {
		return NewErrResourceNotFound(id, kind)
	}
	return err
}
