package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"go.uber.org/zap"
)

const (
	pdfExpirationRule   = "expire-pdfs"
	pdfExpirationPrefix = "pdf/"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	accessKey       string
	secretAccessKey string
	useSSL          bool
	bootAttempts    uint
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithAccessKey(key string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = key
	}
}

func WithSecretKey(key string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = key
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}

func WithBootAttempts(attempts uint) MinioOpts {
	return func(c *minioConfig) {
		c.bootAttempts = attempts
	}
}

func newConfig(opts ...MinioOpts) *minioConfig {
	cfg := &minioConfig{
		useSSL:       false,
		bootAttempts: 10,
	}

	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

type MinioStore struct {
	cfg    *minioConfig
	client *minio.Client
}

var _ Store = (*MinioStore)(nil)

func NewMinioStore(opts ...MinioOpts) (*MinioStore, error) {
	cfg := newConfig(opts...)

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioStore{cfg: cfg, client: minioClient}, nil
}

// EnsureBuckets creates the photos, programs and idadi buckets when missing. The idadi bucket
// expires rendered reports stored under pdf/ after one day.
func (m *MinioStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{BucketPhotos, BucketPrograms, BucketIdadi} {
		err := retry.Do(
			func() error {
				return m.ensureBucket(ctx, bucket)
			},
			retry.Context(ctx),
			retry.Attempts(m.cfg.bootAttempts),
			retry.Delay(1*time.Second),
			retry.OnRetry(func(n uint, err error) {
				zap.S().Named("blob").Warnw("bucket not ready", "bucket", bucket, "attempt", n+1, "error", err)
			}),
		)
		if err != nil {
			return newError("ensure", bucket, "", err)
		}
	}
	return nil
}

func (m *MinioStore) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	zap.S().Named("blob").Infow("bucket created", "bucket", bucket)

	if bucket != BucketIdadi {
		return nil
	}

	config := lifecycle.NewConfiguration()
	config.Rules = []lifecycle.Rule{
		{
			ID:         pdfExpirationRule,
			Status:     "Enabled",
			RuleFilter: lifecycle.Filter{Prefix: pdfExpirationPrefix},
			Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(1)},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucket, config)
}

func (m *MinioStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return newError("put", bucket, key, err)
	}
	return nil
}

func (m *MinioStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	object, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, newError("get", bucket, key, translate(err))
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, newError("get", bucket, key, translate(err))
	}
	return data, nil
}

func (m *MinioStore) URL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLExpiry
	}
	u, err := m.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", newError("url", bucket, key, err)
	}
	return u.String(), nil
}

func (m *MinioStore) Copy(ctx context.Context, bucket, src, dst string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dst},
		minio.CopySrcOptions{Bucket: bucket, Object: src},
	)
	if err != nil {
		return newError("copy", bucket, src, translate(err))
	}
	return nil
}

func (m *MinioStore) Delete(ctx context.Context, bucket, key string) error {
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return newError("delete", bucket, key, err)
	}
	return nil
}

func translate(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound
	}
	return err
}
