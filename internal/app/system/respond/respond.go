// internal/app/system/respond/respond.go

// Package respond writes JSON API responses and maps workflow errors to
// HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/trusteehub/cams/internal/domain/cerrs"
	"go.uber.org/zap"
)

// envelope wraps every successful API payload.
type envelope struct {
	Data any `json:"data"`
}

// errorBody is the JSON shape of an API error.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Module  string `json:"module,omitempty"`
	} `json:"error"`
}

// JSON writes v wrapped in a data envelope.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: v})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps a workflow error to an HTTP status and writes it as JSON.
// Unknown errors become a generic 500 so internal details never reach
// the client; the full error is logged instead.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	switch cerrs.KindOf(err) {
	case cerrs.KindUnauthorized:
		status = http.StatusForbidden
	case cerrs.KindBadRequest:
		status = http.StatusBadRequest
	case cerrs.KindNotFound:
		status = http.StatusNotFound
	}

	var body errorBody
	var cerr *cerrs.Error
	if errors.As(err, &cerr) {
		body.Error.Message = cerr.Message
		body.Error.Module = cerr.Module
	} else {
		body.Error.Message = "an unexpected error occurred"
	}
	if status == http.StatusInternalServerError {
		body.Error.Message = "an unexpected error occurred"
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
