// internal/app/features/errors/logger.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/stajyerlog/internal/app/system/authz"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders the matching
// friendly page. Handlers hold one instead of a raw logger for error paths.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger. A nil logger logs nothing.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	_, _, uid, _ := authz.UserCtx(r)
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		f = append(f, zap.String("request_id", id))
	}
	if !uid.IsZero() {
		f = append(f, zap.String("user_id", uid.Hex()))
	}
	return f
}

// LogServerError logs at error level and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogForbidden logs at warn level and renders a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, e.fields(r, err)...)
	RenderForbidden(w, r, userMsg, backURL)
}

// Log records an error without writing a response, for paths that recover
// with a toast instead of an error page.
func (e *ErrorLogger) Log(r *http.Request, logMsg string, err error) {
	e.log.Error(logMsg, e.fields(r, err)...)
}

func toastTrigger(msg string) string {
	b, _ := json.Marshal(map[string]any{
		"toast": map[string]string{"kind": "error", "message": msg},
	})
	return string(b)
}
