package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/versusleague/internal/api/apierr"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 64 << 10

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody strictly decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewInvalidRequestError("request body is required")
		}
		return NewInvalidRequestError("invalid request body")
	}
	if dec.More() {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
