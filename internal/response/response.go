// Package response writes the JSON envelope shared by every API endpoint.
//
// Success bodies look like {"success":true,"message":...,"data":...};
// failures look like {"success":false,"message":...} with an optional
// "errors" list for validation failures.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/validation"
)

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// Shared messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgInternal         = "Internal server error"
	MsgRouteNotFound    = "Route not found"
	MsgMethodNotAllowed = "Method not allowed"
	MsgBodyTooLarge     = "Request body too large"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message,omitempty"`
	Data    any                     `json:"data,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Stack   string                  `json:"stack,omitempty"`
}

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes a success envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope with a client-facing message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// ValidationFailed writes a 400 listing every field violation in order.
func ValidationFailed(w http.ResponseWriter, errs validation.Errors) {
	JSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: MsgValidationFailed,
		Errors:  errs,
	})
}

// Reporter writes Internal errors. Production hides diagnostics from clients;
// other postures echo them back.
type Reporter struct {
	logger  *slog.Logger
	posture config.Posture
}

// NewReporter creates a Reporter.
func NewReporter(logger *slog.Logger, posture config.Posture) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{logger: logger, posture: posture}
}

// Posture returns the deployment posture the reporter renders for.
func (rp *Reporter) Posture() config.Posture {
	return rp.posture
}

// Internal logs err with request context and writes a 500. fallback is the
// generic message shown in production.
func (rp *Reporter) Internal(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	rp.logger.ErrorContext(r.Context(), "request failed",
		slog.String("request_id", w.Header().Get(RequestIDHeader)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)

	Error(w, http.StatusInternalServerError, rp.Message(err, fallback))
}

// Panic writes a 500 for a recovered panic. Outside production the stack
// trace is included in the body.
func (rp *Reporter) Panic(w http.ResponseWriter, err error, stack []byte) {
	env := Envelope{Success: false, Message: rp.Message(err, MsgInternal)}
	if rp.posture != config.PostureProduction {
		env.Stack = string(stack)
	}
	JSON(w, http.StatusInternalServerError, env)
}

// Message picks the client-facing text for an internal error.
func (rp *Reporter) Message(err error, fallback string) string {
	if rp.posture == config.PostureProduction || err == nil {
		return fallback
	}
	return err.Error()
}
