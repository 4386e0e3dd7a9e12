package document

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"github.com/ranis-junior/psychology-reports/pkg/metrics"
	"go.uber.org/zap"
)

const (
	CoverContentType = "image/png"
	PDFContentType   = "application/pdf"

	defaultTimeout = 15 * time.Second
)

// Normalized is an uploaded document turned into a PDF plus its cover image.
type Normalized struct {
	PDF       []byte
	Cover     []byte
	CoverType string
}

type Option func(n *Normalizer)

func WithSoffice(bin string) Option {
	return func(n *Normalizer) {
		n.soffice = bin
	}
}

func WithPdftoppm(bin string) Option {
	return func(n *Normalizer) {
		n.pdftoppm = bin
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(n *Normalizer) {
		n.timeout = timeout
	}
}

func WithWorkDir(dir string) Option {
	return func(n *Normalizer) {
		n.workDir = dir
	}
}

func WithRunner(r Runner) Option {
	return func(n *Normalizer) {
		n.runner = r
	}
}

type Normalizer struct {
	soffice  string
	pdftoppm string
	timeout  time.Duration
	workDir  string
	runner   Runner
	conf     *model.Configuration
}

func NewNormalizer(opts ...Option) *Normalizer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n := &Normalizer{
		soffice:  "soffice",
		pdftoppm: "pdftoppm",
		timeout:  defaultTimeout,
		workDir:  os.TempDir(),
		runner:   execRunner,
		conf:     conf,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize converts input, identified by its extension, into a PDF and a png cover.
func (n *Normalizer) Normalize(ctx context.Context, input []byte, ext string) (*Normalized, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	var (
		out *Normalized
		err error
	)
	switch {
	case isImage(ext):
		out, err = n.normalizeImage(input)
	case ext == "pdf":
		out, err = n.normalizePDF(ctx, input)
	case ext == "doc" || ext == "docx":
		out, err = n.normalizeOffice(ctx, input, ext)
	default:
		return nil, errors.Wrapf(ErrUnsupportedExtension, "extension %q", ext)
	}
	metrics.IncreaseDocumentConversionsMetric(ext, err)
	if err != nil {
		zap.S().Named("normalizer").Warnw("failed to normalize document", "extension", ext, "error", err)
		return nil, err
	}
	return out, nil
}

func (n *Normalizer) normalizeImage(input []byte) (*Normalized, error) {
	img, err := decodeImage(input)
	if err != nil {
		return nil, newConversionError("image", err)
	}
	flat := flatten(img)

	pdf, err := n.imagePDF(flat)
	if err != nil {
		return nil, newConversionError("image", err)
	}
	cover, err := encodePNG(flat)
	if err != nil {
		return nil, newConversionError("image", err)
	}
	return &Normalized{PDF: pdf, Cover: cover, CoverType: CoverContentType}, nil
}

func (n *Normalizer) normalizePDF(ctx context.Context, input []byte) (*Normalized, error) {
	if err := api.Validate(bytes.NewReader(input), n.conf); err != nil {
		return nil, newConversionError("pdf", errors.Wrap(err, "validate"))
	}
	cover, err := n.pdfCover(ctx, input)
	if err != nil {
		return nil, newConversionError("cover", err)
	}
	return &Normalized{PDF: input, Cover: cover, CoverType: CoverContentType}, nil
}

func (n *Normalizer) normalizeOffice(ctx context.Context, input []byte, ext string) (*Normalized, error) {
	pdf, err := n.officePDF(ctx, input, ext)
	if err != nil {
		return nil, newConversionError("office", err)
	}
	cover, err := n.pdfCover(ctx, pdf)
	if err != nil {
		return nil, newConversionError("cover", err)
	}
	return &Normalized{PDF: pdf, Cover: cover, CoverType: CoverContentType}, nil
}
