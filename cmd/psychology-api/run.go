package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	apiserver "github.com/ranis-junior/psychology-reports/internal/api_server"
	"github.com/ranis-junior/psychology-reports/internal/document"
	handlers "github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1"
	"github.com/ranis-junior/psychology-reports/internal/report"
	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/ranis-junior/psychology-reports/pkg/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the psychology api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done := setupLogger()
		defer done()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		s := openStore(cfg)
		defer s.Close()

		if cfg.Database.Type == "sqlite" {
			if err := s.InitialMigration(context.Background()); err != nil {
				zap.S().Fatalw("running initial migration", "error", err)
			}
		}
		metrics.RegisterRecordsCollector(s)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		blobStore := newBlobStore(ctx, cfg)
		queue, statuses, closeBroker := newTaskBackend(ctx, cfg)
		defer closeBroker()

		orchestrator := report.NewOrchestrator(queue, statuses, report.NewJarRenderer(cfg), blobStore, cfg.Report.BasePath,
			report.WithWorkers(cfg.Report.Workers),
			report.WithURLExpiry(cfg.Storage.URLExpiry),
		)
		go func() {
			if err := orchestrator.Start(ctx); err != nil {
				zap.S().Named("report").Errorw("report workers stopped", "error", err)
			}
		}()

		normalizer := document.NewNormalizer(
			document.WithSoffice(cfg.Converter.SofficeBinary),
			document.WithPdftoppm(cfg.Converter.PdftoppmBinary),
			document.WithTimeout(cfg.Converter.Timeout),
		)

		h := handlers.NewServiceHandler(handlers.Services{
			Psychologists:  service.NewPsychologistService(s, blobStore),
			Patients:       service.NewPatientService(s, blobStore, cfg.Storage.URLExpiry),
			PatientRecords: service.NewPatientRecordService(s),
			Pti:            service.NewPtiService(s),
			Idadi:          service.NewIdadiService(s),
			Reports:        service.NewReportService(s, orchestrator),
			Programs: service.NewProgramService(s, blobStore, normalizer,
				service.WithConcurrency(cfg.Converter.Concurrency),
				service.WithURLExpiry(cfg.Storage.URLExpiry),
			),
		}, cfg.Service.UploadLimit())

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, h, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg, prometheus.DefaultGatherer, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("Error running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}

