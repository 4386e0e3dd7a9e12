package blob

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	BucketPhotos   = "photos"
	BucketPrograms = "programs"
	BucketIdadi    = "idadi"

	DefaultURLExpiry = time.Hour
)

var ErrObjectNotFound = errors.New("object not found")

// Store is a key/value object store addressed by bucket and key.
type Store interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	// URL returns a presigned download url valid for ttl.
	URL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	Copy(ctx context.Context, bucket, src, dst string) error
	Delete(ctx context.Context, bucket, key string) error
}

// Key joins an object path and name.
func Key(path, name string) string {
	return fmt.Sprintf("%s/%s", path, name)
}

// Error wraps every failure returned by a Store.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("blob %s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, bucket, key string, err error) error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}
