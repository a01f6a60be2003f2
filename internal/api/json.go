package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/daivaya/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Detail string `json:"detail" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Detail: msg}
}

var statuses = []struct {
	kind   error
	status int
}{
	{apperr.ErrValidation, http.StatusBadRequest},
	{apperr.ErrLookup, http.StatusBadRequest},
	{apperr.ErrUnauthorized, http.StatusUnauthorized},
	{apperr.ErrInsufficientCredits, http.StatusPaymentRequired},
	{apperr.ErrNotFound, http.StatusNotFound},
	{apperr.ErrConflict, http.StatusConflict},
	{apperr.ErrUnsupported, http.StatusNotImplemented},
	{apperr.ErrUpstream, http.StatusBadGateway},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status of err's kind. Server faults are logged
// and only their safe message reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()))
		writeJSON(w, status, errorBody(apperr.Message(err, "internal error")))
		return
	}
	writeJSON(w, status, errorBody(apperr.Message(err, http.StatusText(status))))
}

// decodeJSON reads a JSON body of at most 1 MiB into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.ErrValidation, err, "invalid JSON body")
	}
	if v, ok := dst.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return apperr.Wrap(apperr.ErrValidation, err, "%s", err.Error())
		}
	}
	return nil
}
