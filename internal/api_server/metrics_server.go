package apiserver

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ranis-junior/psychology-reports/internal/config"
	"go.uber.org/zap"
)

// MetricServer exposes the request, conversion, report task and record count metrics on a
// listener separate from the api.
type MetricServer struct {
	cfg      *config.Config
	gatherer prometheus.Gatherer
	listener net.Listener
}

func NewMetricServer(cfg *config.Config, gatherer prometheus.Gatherer, listener net.Listener) *MetricServer {
	return &MetricServer{
		cfg:      cfg,
		gatherer: gatherer,
		listener: listener,
	}
}

func (m *MetricServer) Router() http.Handler {
	router := chi.NewRouter()
	// the records collector queries the database; its failures are logged and the other
	// families are still served
	router.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
		ErrorLog:      zap.NewStdLog(zap.L().Named("metrics_server")),
	}))
	return router
}

func (m *MetricServer) Run(ctx context.Context) error {
	srv := &http.Server{Addr: m.cfg.Service.MetricsAddress, Handler: m.Router()}
	return serve(ctx, "metrics_server", srv, m.listener)
}
