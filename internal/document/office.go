package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// officePDF converts a doc or docx document through a headless soffice.
func (n *Normalizer) officePDF(ctx context.Context, input []byte, ext string) ([]byte, error) {
	dir, err := os.MkdirTemp(n.workDir, "office-*")
	if err != nil {
		return nil, errors.Wrap(err, "create work dir")
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, fmt.Sprintf("document.%s", ext))
	if err := os.WriteFile(src, input, 0o600); err != nil {
		return nil, errors.Wrap(err, "write document")
	}

	if err := n.run(ctx, n.soffice, "--headless", "--convert-to", "pdf", "--outdir", dir, src); err != nil {
		return nil, err
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "document.pdf"))
	if err != nil {
		return nil, errors.Wrap(err, "read converted document")
	}
	return pdf, nil
}
