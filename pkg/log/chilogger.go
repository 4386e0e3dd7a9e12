package log

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ranis-junior/psychology-reports/pkg/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger logs one entry per request. The route pattern is logged instead of the path so patient
// and psychologist ids stay out of the access log.
func Logger(l *zap.Logger, name string) func(next http.Handler) http.Handler {
	if l == nil {
		panic("log.Logger received a nil *zap.Logger")
	}

	logger := l.Named(name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)

			level := zapcore.InfoLevel
			switch {
			case status >= 500:
				level = zapcore.ErrorLevel
			case status >= 400:
				level = zapcore.WarnLevel
			case route == "/health":
				level = zapcore.DebugLevel
			}

			logger.Log(level, "request completed",
				zap.String("request_id", requestid.FromRequest(r)),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.String("status_text", http.StatusText(status)),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.Int64("request_bytes", r.ContentLength),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

// ConditionalLogger returns the request logging middleware when the level is debug or trace.
func ConditionalLogger(logLevel string, l *zap.Logger, name string) func(next http.Handler) http.Handler {
	if l == nil {
		panic("log.ConditionalLogger received a nil *zap.Logger")
	}

	switch strings.ToLower(logLevel) {
	case "debug", "trace":
		return Logger(l, name)
	default:
		return func(next http.Handler) http.Handler {
			return next
		}
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
