package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with full technical detail and request ID, then sent to
// the client as a core.UserMessage: JSON for API requests, the page with an
// error banner for form posts, plain text for anything else.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/logging"
	"github.com/JonMunkholm/explorer/internal/table"
)

var (
	errNoFile       = errors.New("no file provided")
	errFileTooLarge = errors.New("file too large")
)

// ErrorResponse is the JSON body of API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by the controller
// or upload reader.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNoFile),
		errors.Is(err, core.ErrInvalidSelection),
		errors.Is(err, core.ErrUnknownControl):
		return http.StatusBadRequest
	case table.IsParseError(err),
		errors.Is(err, table.ErrEmptyFile),
		strings.Contains(err.Error(), "unsupported content type"):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoTable):
		return http.StatusConflict
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyLoads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// logError records the technical error and returns the user-facing message.
func logError(r *http.Request, err error, status int) core.UserMessage {
	msg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}
	return msg
}

// respondError logs err and writes it as JSON or plain text.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := logError(r, err, status)

	if wantsJSON(r) {
		respondErrorJSON(w, msg, status)
		return
	}
	http.Error(w, msg.Message+" ("+msg.Code+")", status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// requestID returns chi's request ID, shown on error banners for support.
func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
