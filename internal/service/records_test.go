package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/ranis-junior/psychology-reports/internal/config"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/internal/service/mappers"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("records services", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		blobs  *blob.MemoryStore
	)

	count := func(table string) int {
		var n int
		Expect(gormdb.Raw(fmt.Sprintf("SELECT COUNT(*) FROM %s;", table)).Scan(&n).Error).To(BeNil())
		return n
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
		blobs = blob.NewMemoryStore()
	})

	AfterEach(func() {
		for _, stm := range cleanupStms {
			gormdb.Exec(stm)
		}
	})

	Context("psychologist", func() {
		var srv *service.PsychologistService

		BeforeEach(func() {
			srv = service.NewPsychologistService(s, blobs)
		})

		It("refuses a second psychologist with the same crp", func() {
			form := mappers.PsychologistForm{Name: "Ana", BirthDate: time.Date(1985, 3, 10, 0, 0, 0, 0, time.UTC), Crp: "06/1001"}
			_, err := srv.Create(context.TODO(), form)
			Expect(err).To(BeNil())

			form.Name = "Beatriz"
			_, err = srv.Create(context.TODO(), form)
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())
		})

		It("allows an update keeping its own name and crp", func() {
			form := mappers.PsychologistForm{Name: "Ana", BirthDate: time.Date(1985, 3, 10, 0, 0, 0, 0, time.UTC), Crp: "06/1001"}
			created, err := srv.Create(context.TODO(), form)
			Expect(err).To(BeNil())

			form.BirthDate = time.Date(1986, 3, 10, 0, 0, 0, 0, time.UTC)
			updated, err := srv.Update(context.TODO(), created.ID, form)
			Expect(err).To(BeNil())
			Expect(updated.BirthDate.Year()).To(Equal(1986))
		})

		It("refuses to delete a psychologist with patients", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Joana", "2020-01-15", 1)).Error).To(BeNil())

			err := srv.Delete(context.TODO(), 1)
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())
			Expect(count("psychologists")).To(Equal(1))
		})

		It("removes the program packet with the psychologist", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
			programs := service.NewProgramService(s, blobs, &fakeNormalizer{})
			_, err := programs.UploadDocuments(context.TODO(), 1, []service.UploadFile{{Filename: "a.pdf", Content: []byte("a")}})
			Expect(err).To(BeNil())
			Expect(blobs.Len(blob.BucketPrograms)).To(Equal(2))

			Expect(srv.Delete(context.TODO(), 1)).To(Succeed())
			Expect(count("psychologists")).To(BeZero())
			Expect(count("programs_upload")).To(BeZero())
			Expect(blobs.Len(blob.BucketPrograms)).To(BeZero())
		})

		It("fails with not found on delete of an unknown psychologist", func() {
			err := srv.Delete(context.TODO(), 77)
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})
	})

	Context("patient", func() {
		var srv *service.PatientService

		BeforeEach(func() {
			srv = service.NewPatientService(s, blobs, time.Minute)
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
		})

		It("refuses a duplicated name and birth date", func() {
			form := mappers.PatientForm{Name: "Joana", BirthDate: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), Gender: "F", PsychologistID: 1}
			_, err := srv.Create(context.TODO(), form)
			Expect(err).To(BeNil())

			_, err = srv.Create(context.TODO(), form)
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())
		})

		It("requires an existing psychologist", func() {
			form := mappers.PatientForm{Name: "Joana", BirthDate: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), Gender: "F", PsychologistID: 9}
			_, err := srv.Create(context.TODO(), form)
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})

		It("stores the photo as the patient cover", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Joana", "2020-01-15", 1)).Error).To(BeNil())

			view, err := srv.UploadPhoto(context.TODO(), 1, "image/jpeg", []byte("jpeg"))
			Expect(err).To(BeNil())
			Expect(*view.Photo).To(Equal("cover.jpg"))
			Expect(view.PhotoURL).ToNot(BeNil())
			Expect(blobs.Exists(blob.BucketPhotos, "1/cover.jpg")).To(BeTrue())

			_, err = srv.UploadPhoto(context.TODO(), 1, "application/pdf", []byte("pdf"))
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
		})

		It("deletes the patient with everything hanging from it", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Joana", "2020-01-15", 1)).Error).To(BeNil())
			_, err := srv.UploadPhoto(context.TODO(), 1, "image/png", []byte("png"))
			Expect(err).To(BeNil())

			_, err = service.NewPtiService(s).FullInsert(context.TODO(), mappers.PtiForm{
				PatientID: 1,
				Areas: []mappers.StimulusAreaForm{
					{Name: "Linguagem", Topics: []mappers.TopicForm{{Name: "Vocabulário", Subtopics: []string{"Nomear objetos"}}}},
				},
			})
			Expect(err).To(BeNil())
			_, err = service.NewPatientRecordService(s).Create(context.TODO(), mappers.PatientRecordForm{PatientID: 1, Conclusion: "ok"})
			Expect(err).To(BeNil())
			_, err = service.NewIdadiService(s).Create(context.TODO(), mappers.IdadiForm{PatientID: 1})
			Expect(err).To(BeNil())

			Expect(srv.Delete(context.TODO(), 1)).To(Succeed())
			for _, table := range []string{"patients", "patient_records", "idadi", "pti", "pti_stimulus_areas",
				"pti_specific_objectives_topics", "pti_specific_objectives_subtopics"} {
				Expect(count(table)).To(BeZero(), table)
			}
			Expect(blobs.Len(blob.BucketPhotos)).To(BeZero())
		})

		It("lists the patients of a psychologist by name", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Pedro", "2019-01-15", 1)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 2, "Bruna", "2018-01-15", 1)).Error).To(BeNil())

			views, err := srv.ListByPsychologist(context.TODO(), 1, 0, 10)
			Expect(err).To(BeNil())
			Expect(views).To(HaveLen(2))
			Expect(views[0].Name).To(Equal("Bruna"))

			views, err = srv.ListByPsychologist(context.TODO(), 1, 1, 10)
			Expect(err).To(BeNil())
			Expect(views).To(HaveLen(1))
			Expect(views[0].Name).To(Equal("Pedro"))
		})
	})

	Context("pti", func() {
		var srv *service.PtiService

		BeforeEach(func() {
			srv = service.NewPtiService(s)
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Joana", "2020-01-15", 1)).Error).To(BeNil())
		})

		It("inserts the whole tree", func() {
			pti, err := srv.FullInsert(context.TODO(), mappers.PtiForm{
				PatientID: 1,
				Areas: []mappers.StimulusAreaForm{
					{Name: "Linguagem", Topics: []mappers.TopicForm{{Name: "Vocabulário", Subtopics: []string{"a", "b"}}}},
					{Name: "Motor"},
				},
			})
			Expect(err).To(BeNil())
			Expect(pti.StimulusAreas).To(HaveLen(2))
			Expect(count("pti_specific_objectives_subtopics")).To(Equal(2))
		})

		It("rejects repeated names inside the submitted tree", func() {
			_, err := srv.FullInsert(context.TODO(), mappers.PtiForm{
				PatientID: 1,
				Areas:     []mappers.StimulusAreaForm{{Name: "Motor"}, {Name: "motor "}},
			})
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())
			Expect(count("pti")).To(BeZero())
		})

		It("compares node names case-insensitively within the parent", func() {
			pti, err := srv.Create(context.TODO(), mappers.PtiForm{PatientID: 1})
			Expect(err).To(BeNil())

			area, err := srv.CreateArea(context.TODO(), pti.ID, "Linguagem")
			Expect(err).To(BeNil())

			_, err = srv.CreateArea(context.TODO(), pti.ID, "LINGUAGEM")
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())

			renamed, err := srv.RenameArea(context.TODO(), area.ID, "linguagem")
			Expect(err).To(BeNil())
			Expect(renamed.Name).To(Equal("linguagem"))

			topic, err := srv.CreateTopic(context.TODO(), area.ID, "Fala")
			Expect(err).To(BeNil())
			_, err = srv.CreateSubtopic(context.TODO(), topic.ID, "Sílabas")
			Expect(err).To(BeNil())

			Expect(srv.DeleteArea(context.TODO(), area.ID)).To(Succeed())
			Expect(count("pti_specific_objectives_topics")).To(BeZero())
			Expect(count("pti_specific_objectives_subtopics")).To(BeZero())
		})

		It("allows a single pti per patient", func() {
			_, err := srv.Create(context.TODO(), mappers.PtiForm{PatientID: 1})
			Expect(err).To(BeNil())
			_, err = srv.Create(context.TODO(), mappers.PtiForm{PatientID: 1})
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())
		})
	})

	Context("idadi", func() {
		var srv *service.IdadiService

		BeforeEach(func() {
			srv = service.NewIdadiService(s)
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 1, "Joana", "2020-01-15", 1)).Error).To(BeNil())
			Expect(gormdb.Exec("INSERT INTO idadi_domains (id, name, description, created_at, updated_at) VALUES (1, 'Cognitivo', '', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);").Error).To(BeNil())
			Expect(gormdb.Exec("INSERT INTO idadi_normative_tables (initial_age_range, final_age_range, raw_score, standardized, id_domain, created_at, updated_at) VALUES (40, 50, 12, 97, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);").Error).To(BeNil())
		})

		It("looks missing standard scores up in the normative table", func() {
			age := 45
			given := 80
			idadi, err := srv.Create(context.TODO(), mappers.IdadiForm{
				PatientID:   1,
				ProtocolAge: &age,
				Values: []mappers.IdadiValueForm{
					{DomainID: 1, RawScore: 12},
					{DomainID: 1, RawScore: 13},
					{DomainID: 1, RawScore: 12, StandardScore: &given},
				},
			})
			Expect(err).To(BeNil())
			Expect(idadi.ProtocolAge).To(Equal(45))
			Expect(idadi.Values).To(HaveLen(3))
			Expect(idadi.Values[0].StandardScore).To(Equal(97))
			Expect(idadi.Values[1].StandardScore).To(BeZero())
			Expect(idadi.Values[2].StandardScore).To(Equal(80))
		})

		It("refuses a second idadi and unknown values on update", func() {
			created, err := srv.Create(context.TODO(), mappers.IdadiForm{PatientID: 1})
			Expect(err).To(BeNil())
			Expect(created.ProtocolAge).To(BeNumerically(">", 0))

			_, err = srv.Create(context.TODO(), mappers.IdadiForm{PatientID: 1})
			_, isConflict := err.(*service.ErrConflict)
			Expect(isConflict).To(BeTrue())

			_, err = srv.Update(context.TODO(), created.ID, mappers.IdadiForm{Values: []mappers.IdadiValueForm{{ID: 999, DomainID: 1}}})
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})
	})

	Context("report", func() {
		It("queues the final report of an existing patient", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertPsychologistStm, 1, "Ana", "06/1001")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertPatientStm, 3, "Joana", "2020-01-15", 1)).Error).To(BeNil())

			queue := &fakeQueue{}
			srv := service.NewReportService(s, queue)

			id, err := srv.GenerateIdadiReport(context.TODO(), 3)
			Expect(err).To(BeNil())
			Expect(queue.tasks).To(HaveLen(1))
			Expect(queue.tasks[0].ID).To(Equal(id))
			Expect(queue.tasks[0].Parameters).To(HaveKeyWithValue("id_patient", "3"))

			_, err = srv.GenerateIdadiReport(context.TODO(), 4)
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})
	})
})
