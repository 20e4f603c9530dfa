// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/stratapage/internal/app/system/apperr"
	"github.com/dalemusser/stratapage/internal/app/system/auth"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for handler error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs err with the request path, method and signed-in user.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error, fields ...zap.Field) {
	all := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	if u, ok := auth.CurrentUser(r); ok {
		all = append(all, zap.String("user_id", u.ID))
	}
	e.logger.Error(msg, all...)
}

// Handler renders error pages.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

type errorData struct {
	viewdata.BaseVM
	Message string
}

func render(w http.ResponseWriter, r *http.Request, status int, name, title, msg string) {
	vm := errorData{BaseVM: viewdata.New(r), Message: msg}
	vm.Title = title
	w.WriteHeader(status)
	templates.Render(w, r, name, vm)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.NotFoundMessage(w, r, "The page you are looking for does not exist.")
}

// NotFoundMessage renders the 404 page with a custom message.
func (h *Handler) NotFoundMessage(w http.ResponseWriter, r *http.Request, msg string) {
	render(w, r, http.StatusNotFound, "errors/not_found", "Not Found", msg)
}

// Forbidden renders the 403 page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusForbidden, "errors/forbidden", "Access Denied", "You do not have access to this page.")
}

// InternalError renders the 500 page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusInternalServerError, "errors/internal", "Server Error", "Something went wrong. Please try again.")
}

// FromError renders the page matching err's kind: 404 for NotFound, 403 for
// PermissionDenied, 500 for everything else.
func (h *Handler) FromError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, apperr.ErrNotFound):
		h.NotFoundMessage(w, r, apperr.Message(err, "Not found."))
	case stderrors.Is(err, apperr.ErrPermissionDenied):
		h.Forbidden(w, r)
	default:
		h.InternalError(w, r)
	}
}
