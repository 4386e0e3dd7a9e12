package document

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// pdfCover renders the first page of pdf as a 72 dpi png.
func (n *Normalizer) pdfCover(ctx context.Context, pdf []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(n.workDir, "cover-*")
	if err != nil {
		return nil, errors.Wrap(err, "create work dir")
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(src, pdf, 0o600); err != nil {
		return nil, errors.Wrap(err, "write document")
	}

	prefix := filepath.Join(dir, "cover")
	if err := n.run(ctx, n.pdftoppm, "-png", "-f", "1", "-l", "1", "-r", "72", "-singlefile", src, prefix); err != nil {
		return nil, err
	}

	cover, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, errors.Wrap(err, "read cover")
	}
	return cover, nil
}
