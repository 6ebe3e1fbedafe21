package apiutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes data wrapped in the response envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Data: data})
}

// WriteError maps err onto an HTTP status and writes it in the response envelope.
func WriteError(w http.ResponseWriter, err error) {
	code, status := StatusFor(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	write(w, code, envelope{Error: &errorBody{Code: code, Status: status, Message: err.Error()}})
}

// StatusFor maps the domain error taxonomy onto HTTP status codes.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict, "FAILED_PRECONDITION"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: malformed request body: %v", models.ErrValidation, err)
	}
	return nil
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
