package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ranis-junior/psychology-reports/internal/config"
	handlers "github.com/ranis-junior/psychology-reports/internal/handlers/v1alpha1"
	"github.com/ranis-junior/psychology-reports/pkg/log"
	"github.com/ranis-junior/psychology-reports/pkg/metrics"
	"github.com/ranis-junior/psychology-reports/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	handler  *handlers.ServiceHandler
	listener net.Listener
}

// New returns a new instance of the psychology-reports api server.
func New(
	cfg *config.Config,
	handler *handlers.ServiceHandler,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:      cfg,
		handler:  handler,
		listener: listener,
	}
}

// Router builds the middleware chain and mounts the api handlers.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Service.AllowedOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
		chiMiddleware.RequestID,
		middleware.RequestID,
		log.ConditionalLogger(s.cfg.Service.LogLevel, zap.L(), "api_server"),
		chiMiddleware.Recoverer,
	)

	s.handler.RegisterRoutes(router)
	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")
	srv := &http.Server{Addr: s.cfg.Service.Address, Handler: s.Router()}
	return serve(ctx, "api_server", srv, s.listener)
}

// serve runs srv on l until ctx is done, then shuts it down within gracefulShutdownTimeout.
func serve(ctx context.Context, name string, srv *http.Server, l net.Listener) error {
	logger := zap.S().Named(name)

	go func() {
		<-ctx.Done()
		logger.Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctxTimeout); err != nil {
			logger.Warnw("graceful shutdown interrupted", "error", err)
		}
		logger.Info("server terminated")
	}()

	logger.Infof("Listening on %s...", l.Addr().String())
	if err := srv.Serve(l); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
