package service_test

import (
	"context"
	"fmt"

	"github.com/ranis-junior/psychology-reports/internal/config"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("program service", Ordered, func() {
	var (
		s          store.Store
		gormdb     *gorm.DB
		blobs      *blob.MemoryStore
		normalizer *fakeNormalizer
		merger     *countingMerger
		srv        *service.ProgramService
	)

	const owner uint = 1

	files := func(names ...string) []service.UploadFile {
		out := make([]service.UploadFile, 0, len(names))
		for _, n := range names {
			out = append(out, service.UploadFile{Filename: n, Content: []byte(n)})
		}
		return out
	}

	sequences := func() []int {
		pages, err := srv.PDFPages(context.TODO(), owner)
		Expect(err).To(BeNil())
		seqs := make([]int, 0, len(pages))
		for _, p := range pages {
			seqs = append(seqs, p.Sequence)
		}
		return seqs
	}

	orderingOf := func(docs []service.ProgramDocument) []service.PageOrder {
		orders := make([]service.PageOrder, 0, len(docs))
		for _, d := range docs {
			orders = append(orders, service.PageOrder{ID: d.ID, Name: d.Name, Sequence: d.Sequence})
		}
		return orders
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
		tx := gormdb.Exec(fmt.Sprintf(insertPsychologistStm, owner, "Ana", "06/1001"))
		Expect(tx.Error).To(BeNil())

		blobs = blob.NewMemoryStore()
		normalizer = &fakeNormalizer{}
		merger = &countingMerger{}
		srv = service.NewProgramService(s, blobs, normalizer, service.WithMerger(merger))
	})

	AfterEach(func() {
		for _, stm := range cleanupStms {
			gormdb.Exec(stm)
		}
	})

	Context("upload", func() {
		It("stores a pdf and a cover per file at increasing sequences", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.docx"))
			Expect(err).To(BeNil())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].Sequence).To(Equal(0))
			Expect(docs[1].Sequence).To(Equal(1))
			Expect(docs[0].Filename).To(Equal("a"))
			Expect(docs[0].PDFURL).ToNot(BeEmpty())
			Expect(docs[0].CoverURL).ToNot(BeEmpty())

			Expect(blobs.Len(blob.BucketPrograms)).To(Equal(4))

			var count int
			Expect(gormdb.Raw("SELECT COUNT(*) FROM programs_upload;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(4))

			more, err := srv.UploadImages(context.TODO(), owner, files("c.png"))
			Expect(err).To(BeNil())
			Expect(more[0].Sequence).To(Equal(2))
		})

		It("rejects a forbidden extension before converting or storing anything", func() {
			_, err := srv.UploadDocuments(context.TODO(), owner, files("ok.pdf", "report.exe"))
			Expect(err).ToNot(BeNil())
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())

			Expect(normalizer.calls.Load()).To(BeZero())
			Expect(blobs.Len(blob.BucketPrograms)).To(BeZero())
		})

		It("rejects images on the document endpoint", func() {
			_, err := srv.UploadDocuments(context.TODO(), owner, files("photo.png"))
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
		})

		It("fails with not found for an unknown psychologist", func() {
			_, err := srv.UploadImages(context.TODO(), 42, files("a.png"))
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})

		It("removes the objects already written when the store fails mid batch", func() {
			flaky := newFlakyBlob(3)
			srv = service.NewProgramService(s, flaky, normalizer, service.WithMerger(merger))

			_, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).ToNot(BeNil())
			_, isStorage := err.(*service.ErrStorage)
			Expect(isStorage).To(BeTrue())

			Expect(flaky.Len(blob.BucketPrograms)).To(BeZero())
			var count int
			Expect(gormdb.Raw("SELECT COUNT(*) FROM programs_upload;").Scan(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})
	})

	Context("generate", func() {
		It("reuses the merged document while the ordering is unchanged", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf", "c.pdf"))
			Expect(err).To(BeNil())

			first, err := srv.Generate(context.TODO(), owner, orderingOf(docs))
			Expect(err).To(BeNil())
			Expect(first.Regenerated).To(BeTrue())
			Expect(merger.Calls()).To(Equal(1))

			second, err := srv.Generate(context.TODO(), owner, orderingOf(docs))
			Expect(err).To(BeNil())
			Expect(second.Regenerated).To(BeFalse())
			Expect(second.ID).To(Equal(first.ID))
			Expect(merger.Calls()).To(Equal(1))
		})

		It("drops the stale merged document when the ordering changes", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())

			first, err := srv.Generate(context.TODO(), owner, orderingOf(docs))
			Expect(err).To(BeNil())
			stale, err := s.Program().Get(context.TODO(), first.ID)
			Expect(err).To(BeNil())
			Expect(blobs.Exists(blob.BucketPrograms, stale.Key())).To(BeTrue())

			swapped := orderingOf(docs)
			swapped[0].Sequence, swapped[1].Sequence = 1, 0

			second, err := srv.Generate(context.TODO(), owner, swapped)
			Expect(err).To(BeNil())
			Expect(second.Regenerated).To(BeTrue())
			Expect(second.ID).ToNot(Equal(first.ID))
			Expect(merger.Calls()).To(Equal(2))

			_, err = s.Program().Get(context.TODO(), first.ID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
			Expect(blobs.Exists(blob.BucketPrograms, stale.Key())).To(BeFalse())

			pages, err := srv.PDFPages(context.TODO(), owner)
			Expect(err).To(BeNil())
			Expect(pages[0].Name).To(Equal(docs[1].Name))
			Expect(pages[1].Name).To(Equal(docs[0].Name))
		})

		It("merges the pages in sequence order", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())

			_, err = srv.Generate(context.TODO(), owner, orderingOf(docs))
			Expect(err).To(BeNil())
			Expect(merger.last).To(HaveLen(2))
			Expect(string(merger.last[0])).To(Equal("pdf:pdf:a.pdf"))
			Expect(string(merger.last[1])).To(Equal("pdf:pdf:b.pdf"))
		})

		It("fails with empty input when no page is submitted", func() {
			_, err := srv.Generate(context.TODO(), owner, nil)
			_, isEmpty := err.(*service.ErrEmptyInput)
			Expect(isEmpty).To(BeTrue())
			Expect(merger.Calls()).To(BeZero())
		})

		It("rejects an ordering naming a page of somebody else", func() {
			_, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf"))
			Expect(err).To(BeNil())

			_, err = srv.Generate(context.TODO(), owner, []service.PageOrder{{Name: "unknown.pdf", Sequence: 0}})
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
		})

		It("rejects pages sharing a sequence without touching the ledger", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf", "c.pdf"))
			Expect(err).To(BeNil())

			tied := orderingOf(docs)
			for i := range tied {
				tied[i].Sequence = 5
			}
			_, err = srv.Generate(context.TODO(), owner, tied)
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
			Expect(merger.Calls()).To(BeZero())
			Expect(sequences()).To(Equal([]int{0, 1, 2}))
		})

		It("rolls back an ordering that leaves a gap", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())

			gap := orderingOf(docs)
			gap[1].Sequence = 4
			_, err = srv.Generate(context.TODO(), owner, gap)
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
			Expect(merger.Calls()).To(BeZero())
			Expect(sequences()).To(Equal([]int{0, 1}))
		})
	})

	Context("delete", func() {
		It("closes the sequence gap", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf", "c.pdf", "d.pdf"))
			Expect(err).To(BeNil())
			Expect(sequences()).To(Equal([]int{0, 1, 2, 3}))

			Expect(srv.DeletePair(context.TODO(), docs[1].ID)).To(Succeed())
			Expect(sequences()).To(Equal([]int{0, 1, 2}))

			pages, err := srv.PDFPages(context.TODO(), owner)
			Expect(err).To(BeNil())
			Expect([]string{pages[0].Filename, pages[1].Filename, pages[2].Filename}).To(Equal([]string{"a", "c", "d"}))
			Expect(blobs.Len(blob.BucketPrograms)).To(Equal(6))
		})

		It("accepts the cover id and invalidates the merged document", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())
			_, err = srv.Generate(context.TODO(), owner, orderingOf(docs))
			Expect(err).To(BeNil())

			Expect(srv.DeletePair(context.TODO(), docs[0].CoverID)).To(Succeed())

			_, err = s.Program().Generated(context.TODO(), owner)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
			Expect(blobs.Len(blob.BucketPrograms)).To(Equal(2))
		})

		It("fails with not found for an unknown page", func() {
			err := srv.DeletePair(context.TODO(), 999)
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})
	})

	Context("duplicate", func() {
		It("inserts the copy right after the original", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf", "c.pdf"))
			Expect(err).To(BeNil())

			dup, err := srv.DuplicatePair(context.TODO(), docs[1].ID)
			Expect(err).To(BeNil())
			Expect(dup).To(HaveLen(1))
			Expect(dup[0].Sequence).To(Equal(2))
			Expect(dup[0].Filename).To(Equal("b"))

			Expect(sequences()).To(Equal([]int{0, 1, 2, 3}))
			moved, err := s.Program().Get(context.TODO(), docs[2].ID)
			Expect(err).To(BeNil())
			Expect(moved.Sequence).To(Equal(3))

			copied, err := s.Program().Get(context.TODO(), dup[0].ID)
			Expect(err).To(BeNil())
			data, err := blobs.Get(context.TODO(), blob.BucketPrograms, copied.Key())
			Expect(err).To(BeNil())
			Expect(string(data)).To(Equal("pdf:pdf:b.pdf"))
		})

		It("rolls back the rows when the copy fails", func() {
			flaky := newFlakyBlob(2)
			srv = service.NewProgramService(s, flaky, normalizer, service.WithMerger(merger))

			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf"))
			Expect(err).To(BeNil())

			_, err = srv.DuplicatePair(context.TODO(), docs[0].ID)
			_, isStorage := err.(*service.ErrStorage)
			Expect(isStorage).To(BeTrue())

			Expect(sequences()).To(Equal([]int{0}))
			Expect(flaky.Len(blob.BucketPrograms)).To(Equal(2))
		})
	})

	Context("reorder and list", func() {
		It("applies the submitted sequences", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())

			Expect(srv.Reorder(context.TODO(), owner, []service.PageOrder{
				{Name: docs[0].Name, Sequence: 1},
				{Name: docs[1].Name, Sequence: 0},
			})).To(Succeed())

			listed, err := srv.List(context.TODO(), owner)
			Expect(err).To(BeNil())
			Expect(listed).To(HaveLen(2))
			Expect(listed[0].Filename).To(Equal("b"))
			Expect(listed[1].Filename).To(Equal("a"))
		})

		It("rejects duplicated names", func() {
			err := srv.Reorder(context.TODO(), owner, []service.PageOrder{{Name: "x.pdf", Sequence: 0}, {Name: "x.pdf", Sequence: 1}})
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
		})

		It("rejects duplicated sequences", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf"))
			Expect(err).To(BeNil())

			err = srv.Reorder(context.TODO(), owner, []service.PageOrder{
				{Name: docs[0].Name, Sequence: 1},
				{Name: docs[1].Name, Sequence: 1},
			})
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())
			Expect(sequences()).To(Equal([]int{0, 1}))
		})

		It("rolls back an ordering colliding with a page left out", func() {
			docs, err := srv.UploadDocuments(context.TODO(), owner, files("a.pdf", "b.pdf", "c.pdf"))
			Expect(err).To(BeNil())

			err = srv.Reorder(context.TODO(), owner, []service.PageOrder{{Name: docs[0].Name, Sequence: 2}})
			_, isBadRequest := err.(*service.ErrBadRequest)
			Expect(isBadRequest).To(BeTrue())

			pages, err := srv.PDFPages(context.TODO(), owner)
			Expect(err).To(BeNil())
			Expect(pages[0].Name).To(Equal(docs[0].Name))
			Expect(sequences()).To(Equal([]int{0, 1, 2}))
		})

		It("lists nothing as not found", func() {
			_, err := srv.List(context.TODO(), owner)
			_, isNotFound := err.(*service.ErrResourceNotFound)
			Expect(isNotFound).To(BeTrue())
		})
	})

	Context("change detection", func() {
		It("ignores the order in which pairs are submitted", func() {
			current := []service.PageOrder{{Name: "a", Sequence: 0}, {Name: "b", Sequence: 1}}
			submitted := []service.PageOrder{{Name: "b", Sequence: 1}, {Name: "a", Sequence: 0}}
			Expect(service.NeedsRegeneration(current, submitted, true)).To(BeFalse())
			Expect(service.NeedsRegeneration(current, submitted, false)).To(BeTrue())
			Expect(service.NeedsRegeneration(current, submitted[:1], true)).To(BeTrue())
		})
	})

})
