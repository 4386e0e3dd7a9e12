package service

import (
	"context"
	"errors"

	"github.com/ranis-junior/psychology-reports/internal/normative"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/internal/store/model"
	"github.com/ranis-junior/psychology-reports/pkg/log"
)

type NormativeService struct {
	store  store.Store
	logger *log.StructuredLogger
}

func NewNormativeService(s store.Store) *NormativeService {
	return &NormativeService{
		store:  s,
		logger: log.NewDebugLogger("normative_service"),
	}
}

// Import replaces the normative table of every domain found in the workbook. Unknown domains are
// created.
func (ns *NormativeService) Import(ctx context.Context, content []byte) (map[string]int, error) {
	tracer := ns.logger.WithContext(ctx).Operation("import_normative_tables").
		WithInt("size", len(content)).
		Build()

	sheets, err := normative.ParseWorkbook(content)
	if err != nil {
		if errors.Is(err, normative.ErrNotAWorkbook) {
			return nil, NewErrBadRequest("%v", err)
		}
		return nil, NewErrConversionFailed("normative workbook", err)
	}
	if len(sheets) == 0 {
		return nil, NewErrEmptyInput("workbook has no normative sheet")
	}

	ctx, err = ns.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = store.Rollback(ctx)
	}()

	imported := make(map[string]int, len(sheets))
	for _, sheet := range sheets {
		domain, err := ns.store.Idadi().GetDomainByName(ctx, sheet.Domain)
		if errors.Is(err, store.ErrRecordNotFound) {
			domain, err = ns.store.Idadi().CreateDomain(ctx, model.IdadiDomain{Name: sheet.Domain})
		}
		if err != nil {
			return nil, err
		}

		if err := ns.store.Idadi().ReplaceNormativeTable(ctx, domain.ID, sheet.Rows); err != nil {
			return nil, err
		}
		imported[sheet.Domain] = len(sheet.Rows)
		tracer.Step("domain_imported").WithString("domain", sheet.Domain).WithInt("rows", len(sheet.Rows)).Log()
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	tracer.Success().WithInt("domains", len(imported)).Log()
	return imported, nil
}
