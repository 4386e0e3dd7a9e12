package document

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const fetchTimeout = 20 * time.Second

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
}

// Fetcher downloads images referenced by url.
type Fetcher struct {
	client  *http.Client
	maxSize int64
}

func NewFetcher(maxSize int64) *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: fetchTimeout},
		maxSize: maxSize,
	}
}

// Fetch returns the image body and the extension matching its content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrapf(ErrNotAnImage, "invalid url %q: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, "", errors.Wrapf(ErrNotAnImage, "%s has content type %q", url, mediaType)
	}
	ext, ok := imageExtensions[mediaType]
	if !ok {
		return nil, "", errors.Wrapf(ErrUnsupportedExtension, "%s has content type %q", url, mediaType)
	}

	body := io.Reader(resp.Body)
	if f.maxSize > 0 {
		body = io.LimitReader(resp.Body, f.maxSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read %s", url)
	}
	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, "", errors.Wrapf(ErrTooLarge, "%s exceeds %d bytes", url, f.maxSize)
	}
	return data, ext, nil
}
