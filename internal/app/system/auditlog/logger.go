// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/trusteehub/cams/internal/app/store/audit"
	"go.uber.org/zap"
)

// Mode controls where a category of events is recorded.
// "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off".
const (
	ModeAll = "all"
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration per category.
type Config struct {
	Auth     string
	Workflow string
}

// Logger records audit events to MongoDB (via audit.Store) and to
// structured logs (via zap), per-category configurable.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

// NewNopLogger returns a Logger that records nothing. For tests.
func NewNopLogger() *Logger {
	return &Logger{
		zapLog: zap.NewNop(),
		config: Config{Auth: ModeOff, Workflow: ModeOff},
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *Logger) modeFor(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryWorkflow:
		return l.config.Workflow
	default:
		return ModeAll
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.CaseID != "" {
		fields = append(fields, zap.String("case_id", event.CaseID))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String(k, v))
	}
	l.zapLog.Info("audit_event", fields...)
}

// Log records an event according to the mode configured for its category.
// Store failures are logged but never propagate; audit logging must not
// break the operation it describes.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	mode := l.modeFor(event.Category)
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if mode == ModeAll || mode == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("audit event store write failed",
				zap.String("event_type", event.EventType), zap.Error(err))
		}
	}
}

// LogRequest records an event for an HTTP request, filling in the client
// IP.
func (l *Logger) LogRequest(r *http.Request, event audit.Event) {
	event.IP = getClientIP(r)
	l.Log(r.Context(), event)
}
