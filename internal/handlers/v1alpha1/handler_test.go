package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/ranis-junior/psychology-reports/api/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/config"
	"github.com/ranis-junior/psychology-reports/internal/document"
	handlers "github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"gorm.io/gorm"
)

var cleanupStms = []string{
	"DELETE FROM programs_upload;",
	"DELETE FROM pti_specific_objectives_subtopics;",
	"DELETE FROM pti_specific_objectives_topics;",
	"DELETE FROM pti_stimulus_areas;",
	"DELETE FROM pti;",
	"DELETE FROM patient_records;",
	"DELETE FROM patients;",
	"DELETE FROM psychologists;",
}

type passthroughNormalizer struct{}

func (passthroughNormalizer) Normalize(_ context.Context, input []byte, ext string) (*document.Normalized, error) {
	return &document.Normalized{
		PDF:       append([]byte("pdf:"+ext+":"), input...),
		Cover:     []byte("cover"),
		CoverType: document.CoverContentType,
	}, nil
}

func joinMerger(buffers [][]byte) ([]byte, error) {
	if len(buffers) == 0 {
		return nil, document.ErrEmptyInput
	}
	return bytes.Join(buffers, []byte("|")), nil
}

func jsonBody(v any) io.Reader {
	data, err := json.Marshal(v)
	Expect(err).To(BeNil())
	return bytes.NewReader(data)
}

func multipartBody(field string, files map[string]string) (io.Reader, string) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		Expect(err).To(BeNil())
		_, err = part.Write([]byte(content))
		Expect(err).To(BeNil())
	}
	Expect(w.Close()).To(Succeed())
	return buf, w.FormDataContentType()
}

var _ = Describe("api handlers", Ordered, func() {
	var (
		s        store.Store
		gormdb   *gorm.DB
		router   *chi.Mux
		statuses *report.MemoryStatusStore
	)

	do := func(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, v any) {
		Expect(json.Unmarshal(rec.Body.Bytes(), v)).To(Succeed())
	}

	createPsychologist := func(name, crp string) v1alpha1.Psychologist {
		rec := do(http.MethodPost, "/api/v1/psychologists", jsonBody(map[string]string{
			"name":       name,
			"birth_date": "1985-03-10",
			"crp":        crp,
		}), "application/json")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var p v1alpha1.Psychologist
		decode(rec, &p)
		return p
	}

	createPatient := func(name string, psychologist uint) v1alpha1.Patient {
		rec := do(http.MethodPost, "/api/v1/patients", jsonBody(map[string]any{
			"name":            name,
			"birth_date":      "2019-05-20",
			"gender":          "F",
			"id_psychologist": psychologist,
		}), "application/json")
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var p v1alpha1.Patient
		decode(rec, &p)
		return p
	}

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration(context.TODO())).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		blobs := blob.NewMemoryStore()
		statuses = report.NewMemoryStatusStore(time.Minute)
		orchestrator := report.NewOrchestrator(report.NewMemoryQueue(8), statuses, nil, blobs, GinkgoT().TempDir())

		h := handlers.NewServiceHandler(handlers.Services{
			Psychologists:  service.NewPsychologistService(s, blobs),
			Patients:       service.NewPatientService(s, blobs, time.Hour),
			PatientRecords: service.NewPatientRecordService(s),
			Pti:            service.NewPtiService(s),
			Idadi:          service.NewIdadiService(s),
			Reports:        service.NewReportService(s, orchestrator),
			Programs: service.NewProgramService(s, blobs, passthroughNormalizer{},
				service.WithMerger(service.MergerFunc(joinMerger))),
		}, 1<<20)

		router = chi.NewRouter()
		h.RegisterRoutes(router)
	})

	AfterEach(func() {
		for _, stm := range cleanupStms {
			gormdb.Exec(stm)
		}
	})

	It("answers the health probe", func() {
		rec := do(http.MethodGet, "/health", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var health v1alpha1.Health
		decode(rec, &health)
		Expect(health.Status).To(Equal("ok"))
	})

	Context("psychologists", func() {
		It("creates and reads a psychologist", func() {
			created := createPsychologist("Ana Souza", "06/1001")

			rec := do(http.MethodGet, fmt.Sprintf("/api/v1/psychologists/%d", created.Id), nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var got v1alpha1.Psychologist
			decode(rec, &got)
			Expect(got.Crp).To(Equal("06/1001"))
			Expect(got.BirthDate.String()).To(Equal("1985-03-10"))
		})

		It("rejects an invalid form", func() {
			rec := do(http.MethodPost, "/api/v1/psychologists", jsonBody(map[string]string{
				"name":       "Ana",
				"birth_date": "1985-03-10",
				"crp":        "not-a-crp",
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var e v1alpha1.Error
			decode(rec, &e)
			Expect(e.Message).To(ContainSubstring("crp"))
		})

		It("returns conflict on a repeated crp", func() {
			createPsychologist("Ana Souza", "06/1001")

			rec := do(http.MethodPost, "/api/v1/psychologists", jsonBody(map[string]string{
				"name":       "Bia Lima",
				"birth_date": "1980-01-01",
				"crp":        "06/1001",
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		It("returns not found and bad request on ids", func() {
			Expect(do(http.MethodGet, "/api/v1/psychologists/999", nil, "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodGet, "/api/v1/psychologists/abc", nil, "").Code).To(Equal(http.StatusBadRequest))
		})

		It("refuses to delete a psychologist with patients", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			createPatient("Clara", p.Id)

			rec := do(http.MethodDelete, fmt.Sprintf("/api/v1/psychologists/%d", p.Id), nil, "")
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})

	Context("patients", func() {
		It("lists patients of a psychologist by name", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			createPatient("Rafael", p.Id)
			createPatient("Clara", p.Id)

			rec := do(http.MethodGet, fmt.Sprintf("/api/v1/patients/from_psychologist/%d", p.Id), nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var patients []v1alpha1.Patient
			decode(rec, &patients)
			Expect(patients).To(HaveLen(2))
			Expect(patients[0].Name).To(Equal("Clara"))
			Expect(patients[1].Name).To(Equal("Rafael"))
		})

		It("rejects a photo that is not an image", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			patient := createPatient("Clara", p.Id)

			body, contentType := multipartBody("file", map[string]string{"notes.txt": "text"})
			rec := do(http.MethodPost, fmt.Sprintf("/api/v1/patients/upload/%d", patient.Id), body, contentType)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("pti", func() {
		It("inserts a whole tree and reads it back by patient", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			patient := createPatient("Clara", p.Id)

			rec := do(http.MethodPost, "/api/v1/pti/full_insert", jsonBody(map[string]any{
				"id_patient": patient.Id,
				"stimulus_areas": []map[string]any{
					{"name": "Linguagem", "topics": []map[string]any{
						{"name": "Vocabulario", "subtopics": []string{"Nomear objetos", "Nomear cores"}},
					}},
				},
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = do(http.MethodGet, fmt.Sprintf("/api/v1/pti/from_patient/%d", patient.Id), nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var pti v1alpha1.Pti
			decode(rec, &pti)
			Expect(pti.StimulusAreas).To(HaveLen(1))
			Expect(pti.StimulusAreas[0].Topics[0].Subtopics).To(HaveLen(2))
		})

		It("returns conflict on repeated area names", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			patient := createPatient("Clara", p.Id)

			rec := do(http.MethodPost, "/api/v1/pti/full_insert", jsonBody(map[string]any{
				"id_patient": patient.Id,
				"stimulus_areas": []map[string]any{
					{"name": "Linguagem"},
					{"name": "linguagem "},
				},
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})
	})

	Context("programs", func() {
		upload := func(owner uint, files map[string]string) *httptest.ResponseRecorder {
			body, contentType := multipartBody("files", files)
			return do(http.MethodPost, fmt.Sprintf("/api/v1/programs/upload/pdf/%d", owner), body, contentType)
		}

		It("uploads documents and generates the merged program once", func() {
			p := createPsychologist("Ana Souza", "06/1001")

			rec := upload(p.Id, map[string]string{"a.pdf": "A", "b.pdf": "B"})
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var docs []v1alpha1.ProgramDocument
			decode(rec, &docs)
			Expect(docs).To(HaveLen(2))

			pages := make([]map[string]any, 0, len(docs))
			for _, d := range docs {
				pages = append(pages, map[string]any{"id": d.Id, "name": d.Name, "sequence": d.Sequence})
			}

			rec = do(http.MethodPost, fmt.Sprintf("/api/v1/programs/generate/%d", p.Id), jsonBody(map[string]any{"pages": pages}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var first v1alpha1.GeneratedProgram
			decode(rec, &first)
			Expect(first.Regenerated).To(BeTrue())

			rec = do(http.MethodPost, fmt.Sprintf("/api/v1/programs/generate/%d", p.Id), jsonBody(map[string]any{"pages": pages}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var second v1alpha1.GeneratedProgram
			decode(rec, &second)
			Expect(second.Regenerated).To(BeFalse())
			Expect(second.Id).To(Equal(first.Id))
		})

		It("rejects unsupported extensions", func() {
			p := createPsychologist("Ana Souza", "06/1001")

			rec := upload(p.Id, map[string]string{"virus.exe": "MZ"})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects an upload without files", func() {
			p := createPsychologist("Ana Souza", "06/1001")

			rec := upload(p.Id, map[string]string{})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns not found for an unknown owner", func() {
			rec := upload(404, map[string]string{"a.pdf": "A"})
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("reports", func() {
		It("queues a report and serves its status once", func() {
			p := createPsychologist("Ana Souza", "06/1001")
			patient := createPatient("Clara", p.Id)

			rec := do(http.MethodPost, fmt.Sprintf("/api/v1/idadi/report/generate/%d", patient.Id), nil, "")
			Expect(rec.Code).To(Equal(http.StatusAccepted))

			var task v1alpha1.ReportTask
			decode(rec, &task)
			Expect(task.TaskId).NotTo(BeEmpty())

			statusPath := "/api/v1/idadi/report/status/" + task.TaskId
			Expect(do(http.MethodGet, statusPath, nil, "").Code).To(Equal(http.StatusAccepted))

			Expect(statuses.Succeed(context.TODO(), task.TaskId, "http://blob/report.pdf")).To(Succeed())

			rec = do(http.MethodGet, statusPath, nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			var status v1alpha1.ReportStatus
			decode(rec, &status)
			Expect(status.Url).NotTo(BeNil())
			Expect(*status.Url).To(Equal("http://blob/report.pdf"))

			Expect(do(http.MethodGet, statusPath, nil, "").Code).To(Equal(http.StatusGone))
		})

		It("answers not found for unknown tasks and patients", func() {
			Expect(do(http.MethodGet, "/api/v1/idadi/report/status/"+strings.Repeat("0", 8), nil, "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodPost, "/api/v1/idadi/report/generate/999", nil, "").Code).To(Equal(http.StatusNotFound))
		})
	})
})
