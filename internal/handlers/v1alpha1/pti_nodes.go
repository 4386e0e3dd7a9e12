package v1alpha1

import (
	"net/http"

	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1/mappers"
)

// (GET /api/v1/stimulus_area?id_pti=)
func (h *ServiceHandler) ListStimulusAreas(w http.ResponseWriter, r *http.Request) {
	ptiID, err := queryID(r, "id_pti")
	if err != nil {
		writeError(w, r, err)
		return
	}

	areas, err := h.ptiSrv.ListAreas(r.Context(), ptiID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.StimulusAreaListToApi(areas))
}

// (GET /api/v1/stimulus_area/from_pti/{id})
func (h *ServiceHandler) ListStimulusAreasFromPti(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	areas, err := h.ptiSrv.ListAreas(r.Context(), &id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.StimulusAreaListToApi(areas))
}

// (POST /api/v1/stimulus_area)
func (h *ServiceHandler) CreateStimulusArea(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.StimulusAreaCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	area, err := h.ptiSrv.CreateArea(r.Context(), form.IdPti, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.StimulusAreaToApi(*area))
}

// (GET /api/v1/stimulus_area/{id})
func (h *ServiceHandler) GetStimulusArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	area, err := h.ptiSrv.GetArea(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.StimulusAreaToApi(*area))
}

// (PUT /api/v1/stimulus_area/{id})
func (h *ServiceHandler) RenameStimulusArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.NodeRename
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	area, err := h.ptiSrv.RenameArea(r.Context(), id, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.StimulusAreaToApi(*area))
}

// (DELETE /api/v1/stimulus_area/{id})
func (h *ServiceHandler) DeleteStimulusArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ptiSrv.DeleteArea(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}

// (GET /api/v1/topics?id_pti_stimulus_area=)
func (h *ServiceHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	areaID, err := queryID(r, "id_pti_stimulus_area")
	if err != nil {
		writeError(w, r, err)
		return
	}

	topics, err := h.ptiSrv.ListTopics(r.Context(), areaID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.TopicListToApi(topics))
}

// (GET /api/v1/topics/from_stimulus_area/{id})
func (h *ServiceHandler) ListTopicsFromStimulusArea(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	topics, err := h.ptiSrv.ListTopics(r.Context(), &id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.TopicListToApi(topics))
}

// (POST /api/v1/topics)
func (h *ServiceHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.TopicCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	topic, err := h.ptiSrv.CreateTopic(r.Context(), form.IdStimulusArea, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.TopicToApi(*topic))
}

// (GET /api/v1/topics/{id})
func (h *ServiceHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	topic, err := h.ptiSrv.GetTopic(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.TopicToApi(*topic))
}

// (PUT /api/v1/topics/{id})
func (h *ServiceHandler) RenameTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.NodeRename
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	topic, err := h.ptiSrv.RenameTopic(r.Context(), id, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.TopicToApi(*topic))
}

// (DELETE /api/v1/topics/{id})
func (h *ServiceHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ptiSrv.DeleteTopic(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}

// (GET /api/v1/subtopics?id_pti_specific_objectives_topics=)
func (h *ServiceHandler) ListSubtopics(w http.ResponseWriter, r *http.Request) {
	topicID, err := queryID(r, "id_pti_specific_objectives_topics")
	if err != nil {
		writeError(w, r, err)
		return
	}

	subtopics, err := h.ptiSrv.ListSubtopics(r.Context(), topicID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.SubtopicListToApi(subtopics))
}

// (GET /api/v1/subtopics/from_topic/{id})
func (h *ServiceHandler) ListSubtopicsFromTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	subtopics, err := h.ptiSrv.ListSubtopics(r.Context(), &id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.SubtopicListToApi(subtopics))
}

// (POST /api/v1/subtopics)
func (h *ServiceHandler) CreateSubtopic(w http.ResponseWriter, r *http.Request) {
	var form v1alpha1.SubtopicCreate
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	subtopic, err := h.ptiSrv.CreateSubtopic(r.Context(), form.IdTopic, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, mappers.SubtopicToApi(*subtopic))
}

// (GET /api/v1/subtopics/{id})
func (h *ServiceHandler) GetSubtopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	subtopic, err := h.ptiSrv.GetSubtopic(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.SubtopicToApi(*subtopic))
}

// (PUT /api/v1/subtopics/{id})
func (h *ServiceHandler) RenameSubtopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var form v1alpha1.NodeRename
	if err := h.decode(r, &form); err != nil {
		writeError(w, r, err)
		return
	}

	subtopic, err := h.ptiSrv.RenameSubtopic(r.Context(), id, form.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, mappers.SubtopicToApi(*subtopic))
}

// (DELETE /api/v1/subtopics/{id})
func (h *ServiceHandler) DeleteSubtopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ptiSrv.DeleteSubtopic(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	noContent(w, r)
}
