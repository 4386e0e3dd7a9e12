package document

import (
	"bytes"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// Merge concatenates the PDFs in order, without divider pages.
func Merge(buffers [][]byte) ([]byte, error) {
	if len(buffers) == 0 {
		return nil, ErrEmptyInput
	}

	readers := make([]io.ReadSeeker, 0, len(buffers))
	for i, b := range buffers {
		if len(b) == 0 {
			return nil, errors.Wrapf(ErrEmptyInput, "buffer %d", i)
		}
		readers = append(readers, bytes.NewReader(b))
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, errors.Wrap(err, "merge pdf")
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages of pdf.
func PageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
}
