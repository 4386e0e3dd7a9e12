package store_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ranis-junior/psychology-reports/internal/config"
	st "github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("program store", Ordered, func() {
	const owner = 7

	var (
		store  st.Store
		gormDB *gorm.DB
		ctx    = context.TODO()
	)

	addPair := func(sequence int) uuid.UUID {
		group := uuid.New()
		_, err := store.Program().CreatePair(ctx,
			model.NewProgramPage(owner, "page.pdf", group, model.RolePDF, sequence),
			model.NewProgramPage(owner, "page.pdf", group, model.RoleCover, sequence),
		)
		Expect(err).To(BeNil())
		return group
	}

	sequences := func() []int {
		pages, err := store.Program().List(ctx, st.NewProgramQueryFilter().ByOwner(owner).ByRole(model.RolePDF).ByGenerated(false))
		Expect(err).To(BeNil())
		seqs := make([]int, 0, len(pages))
		for _, p := range pages {
			seqs = append(seqs, p.Sequence)
		}
		return seqs
	}

	BeforeAll(func() {
		db, err := st.InitDB(config.NewDefault())
		Expect(err).To(BeNil())
		gormDB = db
		store = st.NewStore(db)
		Expect(store.InitialMigration(ctx)).To(Succeed())
	})

	AfterAll(func() {
		store.Close()
	})

	BeforeEach(func() {
		Expect(gormDB.Exec(fmt.Sprintf(insertPsychologistStm, owner, "Ana", "06/7")).Error).To(BeNil())
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM programs_upload;")
		gormDB.Exec("DELETE FROM psychologists;")
	})

	It("starts sequences at zero and continues after the highest page", func() {
		next, err := store.Program().NextSequence(ctx, owner)
		Expect(err).To(BeNil())
		Expect(next).To(Equal(0))

		addPair(0)
		addPair(1)

		next, err = store.Program().NextSequence(ctx, owner)
		Expect(err).To(BeNil())
		Expect(next).To(Equal(2))
	})

	It("ignores the generated page when computing the next sequence", func() {
		addPair(0)
		_, err := store.Program().Create(ctx, model.NewGeneratedPage(owner, uuid.New()))
		Expect(err).To(BeNil())

		next, err := store.Program().NextSequence(ctx, owner)
		Expect(err).To(BeNil())
		Expect(next).To(Equal(1))
	})

	It("shifts pages after a sequence", func() {
		addPair(0)
		addPair(1)
		addPair(2)

		Expect(store.Program().ShiftDown(ctx, owner, 0)).To(Succeed())
		Expect(sequences()).To(ConsistOf(0, 0, 1))

		Expect(store.Program().ShiftUp(ctx, owner, 0)).To(Succeed())
		Expect(sequences()).To(ConsistOf(0, 1, 2))
	})

	It("deletes a whole group", func() {
		group := addPair(0)

		pages, err := store.Program().ListGroup(ctx, group)
		Expect(err).To(BeNil())
		Expect(pages).To(HaveLen(2))

		Expect(store.Program().DeleteGroup(ctx, group)).To(Succeed())
		_, err = store.Program().ListGroup(ctx, group)
		Expect(err).To(MatchError(st.ErrRecordNotFound))
		Expect(store.Program().DeleteGroup(ctx, group)).To(MatchError(st.ErrRecordNotFound))
	})

	It("returns and removes the generated page", func() {
		addPair(0)
		_, err := store.Program().Generated(ctx, owner)
		Expect(err).To(MatchError(st.ErrRecordNotFound))

		created, err := store.Program().Create(ctx, model.NewGeneratedPage(owner, uuid.New()))
		Expect(err).To(BeNil())

		generated, err := store.Program().Generated(ctx, owner)
		Expect(err).To(BeNil())
		Expect(generated.ID).To(Equal(created.ID))
		Expect(generated.Sequence).To(Equal(model.GeneratedSequence))

		removed, err := store.Program().DeleteGenerated(ctx, owner)
		Expect(err).To(BeNil())
		Expect(removed).To(HaveLen(1))
		Expect(sequences()).To(HaveLen(1))
	})

	It("moves both rows of a group", func() {
		group := addPair(0)
		Expect(store.Program().UpdateGroupSequence(ctx, group, 5)).To(Succeed())

		pages, err := store.Program().ListGroup(ctx, group)
		Expect(err).To(BeNil())
		for _, p := range pages {
			Expect(p.Sequence).To(Equal(5))
		}
	})
})
