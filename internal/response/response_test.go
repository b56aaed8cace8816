package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sqlarena/sqlarena/internal/config"
	"github.com/sqlarena/sqlarena/internal/validation"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, http.StatusCreated, "done", map[string]int{"id": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	body := decode(t, rec)
	if body["success"] != true || body["message"] != "done" {
		t.Errorf("unexpected body: %v", body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["id"] != float64(1) {
		t.Errorf("unexpected data: %v", body["data"])
	}
	if _, ok := body["errors"]; ok {
		t.Error("errors should be omitted on success")
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, MsgRouteNotFound)

	body := decode(t, rec)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if body["success"] != false || body["message"] != "Route not found" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, ok := body["data"]; ok {
		t.Error("data should be omitted")
	}
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationFailed(rec, validation.Errors{
		{Field: "username", Message: validation.MsgUsernameLength},
		{Field: "password", Message: validation.MsgPasswordLength},
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var env struct {
		Success bool                    `json:"success"`
		Message string                  `json:"message"`
		Errors  []validation.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if env.Success || env.Message != "Validation failed" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	if len(env.Errors) != 2 || env.Errors[0].Field != "username" || env.Errors[1].Field != "password" {
		t.Errorf("errors out of order: %+v", env.Errors)
	}
}

func TestReporter_Internal(t *testing.T) {
	tests := []struct {
		posture config.Posture
		want    string
	}{
		{config.PostureProduction, "An error occurred during registration"},
		{config.PostureDevelopment, "connection reset"},
		{config.PostureTest, "connection reset"},
	}

	for _, tt := range tests {
		t.Run(string(tt.posture), func(t *testing.T) {
			var logs bytes.Buffer
			rp := NewReporter(slog.New(slog.NewJSONHandler(&logs, nil)), tt.posture)

			req := httptest.NewRequest(http.MethodPost, "/api/users/register", nil)
			rec := httptest.NewRecorder()
			rec.Header().Set(RequestIDHeader, "req-1")

			rp.Internal(rec, req, errors.New("connection reset"), "An error occurred during registration")

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", rec.Code)
			}
			body := decode(t, rec)
			if body["message"] != tt.want {
				t.Errorf("message = %v, want %q", body["message"], tt.want)
			}

			// Full diagnostics are always logged.
			out := logs.String()
			if !strings.Contains(out, "connection reset") || !strings.Contains(out, `"request_id":"req-1"`) {
				t.Errorf("log missing diagnostics: %s", out)
			}
		})
	}
}

func TestReporter_Panic(t *testing.T) {
	stack := []byte("goroutine 1 [running]")

	rec := httptest.NewRecorder()
	NewReporter(nil, config.PostureProduction).Panic(rec, errors.New("nil map"), stack)
	body := decode(t, rec)
	if body["message"] != MsgInternal {
		t.Errorf("production message = %v", body["message"])
	}
	if _, ok := body["stack"]; ok {
		t.Error("production must not expose stack")
	}

	rec = httptest.NewRecorder()
	NewReporter(nil, config.PostureDevelopment).Panic(rec, errors.New("nil map"), stack)
	body = decode(t, rec)
	if body["message"] != "nil map" {
		t.Errorf("development message = %v", body["message"])
	}
	if body["stack"] != "goroutine 1 [running]" {
		t.Errorf("development stack = %v", body["stack"])
	}
}
