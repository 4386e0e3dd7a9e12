package main

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ranis-junior/psychology-reports/internal/config"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/internal/store"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"github.com/ranis-junior/psychology-reports/pkg/log"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// setupLogger reads the configuration and installs the global zap logger. The returned func
// restores the previous globals and flushes the logger.
func setupLogger() (*config.Config, func()) {
	cfg, err := config.New()
	if err != nil {
		zap.S().Fatalw("reading configuration", "error", err)
	}

	logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := log.InitLog(log.Options{
		Level:   logLvl,
		Format:  cfg.Service.LogFormat,
		Outputs: cfg.Service.LogOutputs,
	})
	if err != nil {
		zap.S().Fatalw("initializing logger", "error", err)
	}
	undo := zap.ReplaceGlobals(logger)

	return cfg, func() {
		undo()
		_ = logger.Sync()
	}
}

func openStore(cfg *config.Config) store.Store {
	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		zap.S().Fatalw("initializing data store", "error", err)
	}
	return store.NewStore(db)
}

func newBlobStore(ctx context.Context, cfg *config.Config) blob.Store {
	if cfg.Storage.Driver == "memory" {
		zap.S().Warn("using the in-memory blob store, objects are lost on restart")
		return blob.NewMemoryStore()
	}

	minioStore, err := blob.NewMinioStore(
		blob.WithEndpoint(cfg.Storage.Endpoint),
		blob.WithAccessKey(cfg.Storage.AccessKey),
		blob.WithSecretKey(cfg.Storage.SecretKey),
		blob.WithSSL(cfg.Storage.Secure),
	)
	if err != nil {
		zap.S().Fatalw("creating minio client", "error", err)
	}
	if err := minioStore.EnsureBuckets(ctx); err != nil {
		zap.S().Fatalw("creating buckets", "error", err)
	}
	return minioStore
}

// newTaskBackend connects to the broker. Without a broker url the tasks are kept in process.
func newTaskBackend(ctx context.Context, cfg *config.Config) (report.Queue, report.StatusStore, func()) {
	if cfg.Broker.URL == "" {
		zap.S().Warn("no broker configured, report tasks are kept in memory")
		return report.NewMemoryQueue(64), report.NewMemoryStatusStore(cfg.Report.ResultTTL), func() {}
	}

	opts, err := goredis.ParseURL(cfg.Broker.URL)
	if err != nil {
		zap.S().Fatalw("parsing broker url", "error", err)
	}
	rdb := goredis.NewClient(opts)

	err = retry.Do(
		func() error {
			return rdb.Ping(ctx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(10),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			zap.S().Named("broker").Warnw("broker not ready", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		zap.S().Fatalw("connecting to broker", "error", err)
	}

	return report.NewRedisQueue(rdb), report.NewRedisStatusStore(rdb, cfg.Report.ResultTTL), func() {
		_ = rdb.Close()
	}
}
