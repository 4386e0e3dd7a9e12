package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/ranis-junior/psychology-reports/internal/document"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"github.com/ranis-junior/psychology-reports/pkg/log"
	"github.com/ranis-junior/psychology-reports/pkg/metrics"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Normalizer interface {
	Normalize(ctx context.Context, input []byte, ext string) (*document.Normalized, error)
}

type Merger interface {
	Merge(buffers [][]byte) ([]byte, error)
}

// MergerFunc adapts a function to the Merger interface.
type MergerFunc func(buffers [][]byte) ([]byte, error)

func (f MergerFunc) Merge(buffers [][]byte) ([]byte, error) {
	return f(buffers)
}

type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Filename string
	Content  []byte
}

// ProgramDocument is an uploaded document: its pdf page and its cover.
type ProgramDocument struct {
	ID       uint
	CoverID  uint
	Name     string
	Filename string
	GroupID  uuid.UUID
	Sequence int
	PDFURL   string
	CoverURL string
}

type GeneratedProgram struct {
	ID          uint
	Name        string
	URL         string
	Regenerated bool
}

type ProgramOption func(s *ProgramService)

func WithMerger(m Merger) ProgramOption {
	return func(s *ProgramService) {
		s.merger = m
	}
}

func WithImageFetcher(f ImageFetcher) ProgramOption {
	return func(s *ProgramService) {
		s.fetcher = f
	}
}

func WithConcurrency(n int) ProgramOption {
	return func(s *ProgramService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithURLExpiry(ttl time.Duration) ProgramOption {
	return func(s *ProgramService) {
		s.urlTTL = ttl
	}
}

type ProgramService struct {
	store       store.Store
	blob        blob.Store
	normalizer  Normalizer
	merger      Merger
	fetcher     ImageFetcher
	concurrency int
	urlTTL      time.Duration
	logger      *log.StructuredLogger
}

func NewProgramService(s store.Store, blobStore blob.Store, normalizer Normalizer, opts ...ProgramOption) *ProgramService {
	ps := &ProgramService{
		store:       s,
		blob:        blobStore,
		normalizer:  normalizer,
		merger:      MergerFunc(document.Merge),
		fetcher:     document.NewFetcher(0),
		concurrency: 4,
		urlTTL:      blob.DefaultURLExpiry,
		logger:      log.NewDebugLogger("program_service"),
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// List returns the uploaded documents of the owner in sequence order.
func (ps *ProgramService) List(ctx context.Context, owner uint) ([]ProgramDocument, error) {
	tracer := ps.logger.WithContext(ctx).Operation("list_programs").
		WithUint("psychologist_id", owner).
		Build()

	pages, err := ps.store.Program().List(ctx, store.NewProgramQueryFilter().ByOwner(owner).ByGenerated(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list program pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, NewErrResourceNotFound(owner, "programs of psychologist")
	}

	docs, err := ps.documents(ctx, pages)
	if err != nil {
		return nil, err
	}

	tracer.Success().WithInt("count", len(docs)).Log()
	return docs, nil
}

// PDFPages returns the uploaded pdf rows of the owner ordered by sequence.
func (ps *ProgramService) PDFPages(ctx context.Context, owner uint) (model.ProgramPageList, error) {
	return ps.store.Program().List(ctx, store.NewProgramQueryFilter().ByOwner(owner).ByRole(model.RolePDF).ByGenerated(false))
}

// RecordPair inserts the pdf and cover rows of one uploaded document.
func (ps *ProgramService) RecordPair(ctx context.Context, owner uint, displayName string, group uuid.UUID, sequence int) (model.ProgramPageList, error) {
	pdf := model.NewProgramPage(owner, displayName, group, model.RolePDF, sequence)
	cover := model.NewProgramPage(owner, displayName, group, model.RoleCover, sequence)
	return ps.store.Program().CreatePair(ctx, pdf, cover)
}

func (ps *ProgramService) UploadImages(ctx context.Context, owner uint, files []UploadFile) ([]ProgramDocument, error) {
	return ps.upload(ctx, owner, document.KindImage, files)
}

func (ps *ProgramService) UploadDocuments(ctx context.Context, owner uint, files []UploadFile) ([]ProgramDocument, error) {
	return ps.upload(ctx, owner, document.KindDocument, files)
}

// UploadImageLinks downloads every link and uploads them as images.
func (ps *ProgramService) UploadImageLinks(ctx context.Context, owner uint, links []string) ([]ProgramDocument, error) {
	if len(links) == 0 {
		return nil, NewErrBadRequest("no image link submitted")
	}
	if _, err := ps.owner(ctx, owner); err != nil {
		return nil, err
	}

	files := make([]UploadFile, len(links))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ps.concurrency)
	for i, link := range links {
		g.Go(func() error {
			data, ext, err := ps.fetcher.Fetch(gctx, link)
			if err != nil {
				return documentError(link, err)
			}
			files[i] = UploadFile{Filename: linkFilename(link, ext), Content: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ps.upload(ctx, owner, document.KindImage, files)
}

func linkFilename(link, ext string) string {
	name := "image"
	if u, err := url.Parse(link); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			name = document.DisplayName(base)
		}
	}
	return fmt.Sprintf("%s.%s", name, ext)
}

func (ps *ProgramService) upload(ctx context.Context, owner uint, kind document.Kind, files []UploadFile) ([]ProgramDocument, error) {
	tracer := ps.logger.WithContext(ctx).Operation("upload_programs").
		WithUint("psychologist_id", owner).
		WithString("kind", string(kind)).
		WithInt("files", len(files)).
		Build()

	if len(files) == 0 {
		return nil, NewErrBadRequest("no file submitted")
	}
	if _, err := ps.owner(ctx, owner); err != nil {
		return nil, err
	}

	exts := make([]string, len(files))
	for i, f := range files {
		ext, err := document.ValidateExtension(kind, f.Filename)
		if err != nil {
			return nil, NewErrBadRequest("%v", err)
		}
		exts[i] = ext
	}

	normalized := make([]*document.Normalized, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ps.concurrency)
	for i, f := range files {
		g.Go(func() error {
			out, err := ps.normalizer.Normalize(gctx, f.Content, exts[i])
			if err != nil {
				return documentError(f.Filename, err)
			}
			normalized[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	tracer.Step("normalized").Log()

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.store.Psychologist().Lock(ctx, owner); err != nil {
		return nil, err
	}

	next, err := ps.store.Program().NextSequence(ctx, owner)
	if err != nil {
		return nil, err
	}

	var (
		uploaded []string
		created  model.ProgramPageList
	)
	for i, out := range normalized {
		pair, err := ps.RecordPair(ctx, owner, document.DisplayName(files[i].Filename), uuid.New(), next+i)
		if err != nil {
			ps.compensate(ctx, uploaded)
			return nil, err
		}
		for _, page := range pair {
			data, contentType := out.PDF, document.PDFContentType
			if page.Role == model.RoleCover {
				data, contentType = out.Cover, out.CoverType
			}
			if err := ps.blob.Put(ctx, blob.BucketPrograms, page.Key(), data, contentType); err != nil {
				ps.compensate(ctx, uploaded)
				tracer.Error(err).Log()
				return nil, NewErrStorage(err)
			}
			uploaded = append(uploaded, page.Key())
		}
		created = append(created, pair...)
	}

	stale, err := ps.store.Program().DeleteGenerated(ctx, owner)
	if err != nil {
		ps.compensate(ctx, uploaded)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		ps.compensate(ctx, uploaded)
		return nil, err
	}
	ps.dropObjects(ctx, stale)

	docs, err := ps.documents(ctx, created)
	if err != nil {
		return nil, err
	}

	tracer.Success().WithInt("created", len(docs)).WithBool("invalidated", len(stale) > 0).Log()
	return docs, nil
}

// DeletePair removes the document the page belongs to, closes the sequence gap and drops the
// merged document. Objects are deleted once the rows are gone.
func (ps *ProgramService) DeletePair(ctx context.Context, id uint) error {
	tracer := ps.logger.WithContext(ctx).Operation("delete_program").
		WithUint("page_id", id).
		Build()

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	page, err := ps.page(ctx, id)
	if err != nil {
		return err
	}
	if err := ps.store.Psychologist().Lock(ctx, page.PsychologistID); err != nil {
		return err
	}

	group, err := ps.store.Program().ListGroup(ctx, page.GroupID)
	if err != nil {
		return err
	}
	if err := ps.store.Program().DeleteGroup(ctx, page.GroupID); err != nil {
		return err
	}

	var stale model.ProgramPageList
	if !page.Generated {
		if err := ps.store.Program().ShiftDown(ctx, page.PsychologistID, page.Sequence); err != nil {
			return err
		}
		if stale, err = ps.store.Program().DeleteGenerated(ctx, page.PsychologistID); err != nil {
			return err
		}
	}

	if _, err := store.Commit(ctx); err != nil {
		return err
	}
	tracer.Step("rows_deleted").WithInt("rows", len(group)+len(stale)).Log()

	var errs []error
	for _, key := range objectKeys(append(group, stale...)) {
		if err := ps.blob.Delete(ctx, blob.BucketPrograms, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		tracer.Error(err).Log()
		return NewErrStorage(err)
	}

	tracer.Success().Log()
	return nil
}

// DuplicatePair inserts a copy of the document right after it.
func (ps *ProgramService) DuplicatePair(ctx context.Context, id uint) ([]ProgramDocument, error) {
	tracer := ps.logger.WithContext(ctx).Operation("duplicate_program").
		WithUint("page_id", id).
		Build()

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	page, err := ps.page(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.Generated {
		return nil, NewErrBadRequest("the merged document cannot be duplicated")
	}
	if err := ps.store.Psychologist().Lock(ctx, page.PsychologistID); err != nil {
		return nil, err
	}

	group, err := ps.store.Program().ListGroup(ctx, page.GroupID)
	if err != nil {
		return nil, err
	}
	if err := ps.store.Program().ShiftUp(ctx, page.PsychologistID, page.Sequence); err != nil {
		return nil, err
	}

	pair, err := ps.RecordPair(ctx, page.PsychologistID, page.Filename, uuid.New(), page.Sequence+1)
	if err != nil {
		return nil, err
	}
	tracer.Step("rows_created").WithInt("sequence", page.Sequence+1).Log()

	var copied []string
	for _, dst := range pair {
		src, ok := sibling(group, dst.Role)
		if !ok {
			ps.compensate(ctx, copied)
			return nil, fmt.Errorf("document %s has no %s page", page.GroupID, dst.Role)
		}
		if err := ps.blob.Copy(ctx, blob.BucketPrograms, src.Key(), dst.Key()); err != nil {
			ps.compensate(ctx, copied)
			tracer.Error(err).Log()
			return nil, NewErrStorage(err)
		}
		copied = append(copied, dst.Key())
	}

	stale, err := ps.store.Program().DeleteGenerated(ctx, page.PsychologistID)
	if err != nil {
		ps.compensate(ctx, copied)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		ps.compensate(ctx, copied)
		return nil, err
	}
	ps.dropObjects(ctx, stale)

	docs, err := ps.documents(ctx, pair)
	if err != nil {
		return nil, err
	}
	tracer.Success().Log()
	return docs, nil
}

// Reorder moves every named document to its submitted sequence and drops the merged document.
func (ps *ProgramService) Reorder(ctx context.Context, owner uint, orders []PageOrder) error {
	tracer := ps.logger.WithContext(ctx).Operation("reorder_programs").
		WithUint("psychologist_id", owner).
		WithInt("pages", len(orders)).
		Build()

	if err := validateOrdering(orders); err != nil {
		return err
	}

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.lockOwner(ctx, owner); err != nil {
		return err
	}
	if err := ps.reorder(ctx, owner, orders); err != nil {
		return err
	}
	stale, err := ps.store.Program().DeleteGenerated(ctx, owner)
	if err != nil {
		return err
	}
	if _, err := store.Commit(ctx); err != nil {
		return err
	}
	ps.dropObjects(ctx, stale)

	tracer.Success().Log()
	return nil
}

// Generate merges the owner's pdf pages in the submitted order. The stored merged document is
// returned untouched when the ordering matches the one it was built from.
func (ps *ProgramService) Generate(ctx context.Context, owner uint, orders []PageOrder) (*GeneratedProgram, error) {
	tracer := ps.logger.WithContext(ctx).Operation("generate_program").
		WithUint("psychologist_id", owner).
		WithInt("pages", len(orders)).
		Build()

	if len(orders) == 0 {
		return nil, NewErrEmptyInput("no page submitted")
	}
	if err := validateOrdering(orders); err != nil {
		return nil, err
	}

	ctx, err := ps.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	if err := ps.lockOwner(ctx, owner); err != nil {
		return nil, err
	}

	current, err := ps.PDFPages(ctx, owner)
	if err != nil {
		return nil, err
	}
	existing, err := ps.store.Program().Generated(ctx, owner)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	if !NeedsRegeneration(pageOrders(current), orders, existing != nil) {
		if _, err := store.Commit(ctx); err != nil {
			return nil, err
		}
		u, err := ps.blob.URL(ctx, blob.BucketPrograms, existing.Key(), ps.urlTTL)
		if err != nil {
			return nil, NewErrStorage(err)
		}
		metrics.IncreaseProgramGenerationsMetric("reused")
		tracer.Success().WithBool("regenerated", false).Log()
		return &GeneratedProgram{ID: existing.ID, Name: existing.Name, URL: u}, nil
	}

	stale, err := ps.store.Program().DeleteGenerated(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := ps.reorder(ctx, owner, orders); err != nil {
		return nil, err
	}

	pages, err := ps.PDFPages(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, NewErrEmptyInput("psychologist has no uploaded page")
	}

	buffers := make([][]byte, 0, len(pages))
	for _, p := range pages {
		data, err := ps.blob.Get(ctx, blob.BucketPrograms, p.Key())
		if err != nil {
			return nil, NewErrStorage(err)
		}
		buffers = append(buffers, data)
	}
	tracer.Step("pages_fetched").WithInt("count", len(buffers)).Log()

	merged, err := ps.merger.Merge(buffers)
	if err != nil {
		metrics.IncreaseProgramGenerationsMetric("failed")
		tracer.Error(err).Log()
		if errors.Is(err, document.ErrEmptyInput) {
			return nil, NewErrEmptyInput(err.Error())
		}
		return nil, NewErrConversionFailed("merged program", err)
	}

	row, err := ps.store.Program().Create(ctx, model.NewGeneratedPage(owner, uuid.New()))
	if err != nil {
		return nil, err
	}
	if err := ps.blob.Put(ctx, blob.BucketPrograms, row.Key(), merged, document.PDFContentType); err != nil {
		return nil, NewErrStorage(err)
	}
	if _, err := store.Commit(ctx); err != nil {
		ps.compensate(ctx, []string{row.Key()})
		return nil, err
	}
	ps.dropObjects(ctx, stale)

	u, err := ps.blob.URL(ctx, blob.BucketPrograms, row.Key(), ps.urlTTL)
	if err != nil {
		return nil, NewErrStorage(err)
	}

	metrics.IncreaseProgramGenerationsMetric("merged")
	tracer.Success().WithBool("regenerated", true).WithInt("pages", len(pages)).Log()
	return &GeneratedProgram{ID: row.ID, Name: row.Name, URL: u, Regenerated: true}, nil
}

func (ps *ProgramService) reorder(ctx context.Context, owner uint, orders []PageOrder) error {
	names := funk.Map(orders, func(o PageOrder) string { return o.Name }).([]string)
	pages, err := ps.store.Program().List(ctx, store.NewProgramQueryFilter().ByOwner(owner).ByGenerated(false).ByNames(names))
	if err != nil {
		return err
	}

	byName := make(map[string]model.ProgramPage, len(pages))
	for _, p := range pages {
		byName[p.Name] = p
	}
	for _, o := range orders {
		p, ok := byName[o.Name]
		if !ok {
			return NewErrBadRequest("page %q does not belong to psychologist %d", o.Name, owner)
		}
		if p.Sequence == o.Sequence {
			continue
		}
		if err := ps.store.Program().UpdateGroupSequence(ctx, p.GroupID, o.Sequence); err != nil {
			return err
		}
	}

	// the ordering must leave the owner's pages numbered 0..n-1
	pdfs, err := ps.PDFPages(ctx, owner)
	if err != nil {
		return err
	}
	for i, p := range pdfs {
		if p.Sequence != i {
			return NewErrBadRequest("ordering leaves page %q at sequence %d, expected %d", p.Name, p.Sequence, i)
		}
	}
	return nil
}

func validateOrdering(orders []PageOrder) error {
	seen := make(map[string]struct{}, len(orders))
	sequences := make(map[int]string, len(orders))
	for _, o := range orders {
		if o.Name == "" {
			return NewErrBadRequest("page name is required")
		}
		if o.Sequence < 0 {
			return NewErrBadRequest("page %q has a negative sequence", o.Name)
		}
		if _, ok := seen[o.Name]; ok {
			return NewErrBadRequest("page %q submitted twice", o.Name)
		}
		seen[o.Name] = struct{}{}
		if other, ok := sequences[o.Sequence]; ok {
			return NewErrBadRequest("pages %q and %q share sequence %d", other, o.Name, o.Sequence)
		}
		sequences[o.Sequence] = o.Name
	}
	return nil
}

func (ps *ProgramService) owner(ctx context.Context, id uint) (*model.Psychologist, error) {
	p, err := ps.store.Psychologist().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrPsychologistNotFound(id)
		}
		return nil, err
	}
	return p, nil
}

func (ps *ProgramService) lockOwner(ctx context.Context, id uint) error {
	if err := ps.store.Psychologist().Lock(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrPsychologistNotFound(id)
		}
		return err
	}
	return nil
}

func (ps *ProgramService) page(ctx context.Context, id uint) (*model.ProgramPage, error) {
	page, err := ps.store.Program().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrProgramNotFound(id)
		}
		return nil, err
	}
	return page, nil
}

// documents pairs pdf and cover rows by group, keeping the order of pages.
func (ps *ProgramService) documents(ctx context.Context, pages model.ProgramPageList) ([]ProgramDocument, error) {
	var (
		docs  []ProgramDocument
		index = make(map[uuid.UUID]int)
	)
	for _, p := range pages {
		i, ok := index[p.GroupID]
		if !ok {
			i = len(docs)
			index[p.GroupID] = i
			docs = append(docs, ProgramDocument{
				Filename: p.Filename,
				GroupID:  p.GroupID,
				Sequence: p.Sequence,
			})
		}

		u, err := ps.blob.URL(ctx, blob.BucketPrograms, p.Key(), ps.urlTTL)
		if err != nil {
			return nil, NewErrStorage(err)
		}
		switch p.Role {
		case model.RolePDF:
			docs[i].ID, docs[i].Name, docs[i].PDFURL = p.ID, p.Name, u
		case model.RoleCover:
			docs[i].CoverID, docs[i].CoverURL = p.ID, u
		}
	}
	return docs, nil
}

func sibling(group model.ProgramPageList, role string) (model.ProgramPage, bool) {
	for _, p := range group {
		if p.Role == role {
			return p, true
		}
	}
	return model.ProgramPage{}, false
}

func objectKeys(pages model.ProgramPageList) []string {
	return funk.Map([]model.ProgramPage(pages), func(p model.ProgramPage) string { return p.Key() }).([]string)
}

// compensate deletes objects written by an operation that did not commit.
func (ps *ProgramService) compensate(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := ps.blob.Delete(context.WithoutCancel(ctx), blob.BucketPrograms, key); err != nil {
			zap.S().Named("program_service").Errorw("failed to remove orphan object", "key", key, "error", err)
		}
	}
}

// dropObjects deletes the objects of rows removed by a committed operation.
func (ps *ProgramService) dropObjects(ctx context.Context, pages model.ProgramPageList) {
	ps.compensate(ctx, objectKeys(pages))
}
