package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ranis-junior/psychology-reports/pkg/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// StructuredLogger emits one log line per operation step, carrying the operation name,
// the request id and the fields attached at build time.
type StructuredLogger struct {
	logger *zap.Logger
	fields []zap.Field
}

func NewDebugLogger(name string) *StructuredLogger {
	return &StructuredLogger{logger: zap.L().Named(name)}
}

func (l *StructuredLogger) WithContext(ctx context.Context) *StructuredLogger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return l
	}
	return &StructuredLogger{
		logger: l.logger,
		fields: append(append([]zap.Field{}, l.fields...), zap.String("request_id", reqID)),
	}
}

func (l *StructuredLogger) Operation(name string) *OperationBuilder {
	return &OperationBuilder{
		logger:    l.logger,
		operation: name,
		fields:    append(append([]zap.Field{}, l.fields...), zap.String("operation", name)),
	}
}

type OperationBuilder struct {
	logger    *zap.Logger
	operation string
	fields    []zap.Field
}

func (b *OperationBuilder) WithString(key, value string) *OperationBuilder {
	b.fields = append(b.fields, zap.String(key, value))
	return b
}

func (b *OperationBuilder) WithStringPtr(key string, value *string) *OperationBuilder {
	if value != nil {
		b.fields = append(b.fields, zap.String(key, *value))
	}
	return b
}

func (b *OperationBuilder) WithInt(key string, value int) *OperationBuilder {
	b.fields = append(b.fields, zap.Int(key, value))
	return b
}

func (b *OperationBuilder) WithUint(key string, value uint) *OperationBuilder {
	b.fields = append(b.fields, zap.Uint(key, value))
	return b
}

func (b *OperationBuilder) WithBool(key string, value bool) *OperationBuilder {
	b.fields = append(b.fields, zap.Bool(key, value))
	return b
}

func (b *OperationBuilder) WithUUID(key string, value uuid.UUID) *OperationBuilder {
	b.fields = append(b.fields, zap.String(key, value.String()))
	return b
}

func (b *OperationBuilder) Build() *OperationTracer {
	b.logger.Debug("operation started", b.fields...)
	return &OperationTracer{
		logger: b.logger,
		fields: b.fields,
		start:  time.Now(),
	}
}

type OperationTracer struct {
	logger *zap.Logger
	fields []zap.Field
	start  time.Time
}

func (t *OperationTracer) Step(name string) *Event {
	return t.event(zap.DebugLevel, "operation step", zap.String("step", name))
}

func (t *OperationTracer) Success() *Event {
	return t.event(zap.DebugLevel, "operation succeeded", zap.Duration("duration", time.Since(t.start)))
}

func (t *OperationTracer) Error(err error) *Event {
	return t.event(zap.ErrorLevel, "operation failed", zap.Duration("duration", time.Since(t.start)), zap.Error(err))
}

func (t *OperationTracer) event(level zapcore.Level, msg string, extra ...zap.Field) *Event {
	fields := make([]zap.Field, 0, len(t.fields)+len(extra))
	fields = append(fields, t.fields...)
	fields = append(fields, extra...)
	return &Event{logger: t.logger, level: level, msg: msg, fields: fields}
}

// Event is a single log line under an operation.
type Event struct {
	logger *zap.Logger
	level  zapcore.Level
	msg    string
	fields []zap.Field
}

func (e *Event) WithString(key, value string) *Event {
	e.fields = append(e.fields, zap.String(key, value))
	return e
}

func (e *Event) WithInt(key string, value int) *Event {
	e.fields = append(e.fields, zap.Int(key, value))
	return e
}

func (e *Event) WithUint(key string, value uint) *Event {
	e.fields = append(e.fields, zap.Uint(key, value))
	return e
}

func (e *Event) WithBool(key string, value bool) *Event {
	e.fields = append(e.fields, zap.Bool(key, value))
	return e
}

func (e *Event) WithUUID(key string, value uuid.UUID) *Event {
	e.fields = append(e.fields, zap.String(key, value.String()))
	return e
}

func (e *Event) Log() {
	if ce := e.logger.Check(e.level, e.msg); ce != nil {
		ce.Write(e.fields...)
	}
}
