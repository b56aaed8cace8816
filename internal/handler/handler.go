// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sqlarena/sqlarena/internal/response"
	"github.com/sqlarena/sqlarena/internal/validation"
)

// RootMessage is returned by GET /.
const RootMessage = "SQL-Arena API is running"

// MsgInvalidBody is the field error for a body that is not a JSON object.
const MsgInvalidBody = "Request body must be a valid JSON object"

// Handler serves the routes that carry no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Root reports that the API is up.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusNotFound, response.MsgRouteNotFound)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, response.MsgMethodNotAllowed)
}

// errBodyTooLarge marks a body cut off by the size limit.
var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	// Trailing data after the object.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, response.MsgBodyTooLarge)
		return
	}
	response.ValidationFailed(w, validation.Errors{
		{Field: "body", Message: MsgInvalidBody},
	})
}
