package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thoas/go-funk"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

var allowed = map[Kind][]string{
	KindImage:    {"jpg", "jpeg", "png"},
	KindDocument: {"doc", "docx", "pdf"},
}

// ValidateExtension returns the lower-cased extension of filename, without the dot, when it is
// allowed for kind.
func ValidateExtension(kind Kind, filename string) (string, error) {
	ext := Extension(filename)
	if !funk.ContainsString(allowed[kind], ext) {
		return "", fmt.Errorf("%w: %q is not one of %s", ErrUnsupportedExtension, filename, strings.Join(allowed[kind], ", "))
	}
	return ext, nil
}

func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// DisplayName is the lower-cased file name without its extension.
func DisplayName(filename string) string {
	base := filepath.Base(filename)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func isImage(ext string) bool {
	return funk.ContainsString(allowed[KindImage], ext)
}
