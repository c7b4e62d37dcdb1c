package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"finebank/internal/core"
)

// errorResponse is the single error shape every endpoint returns.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a classified error onto its status code. Unclassified
// errors become 500 with a generic message so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch core.KindOf(err) {
	case core.KindValidation:
		status = http.StatusBadRequest
		msg = err.Error()
	case core.KindAuth:
		status = http.StatusUnauthorized
		msg = err.Error()
	case core.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case core.KindConflict:
		status = http.StatusConflict
		msg = err.Error()
	default:
		slog.Error("Unhandled error", "error", err)
	}

	writeJSON(w, status, errorResponse{Message: msg})
}

const maxBodySize = 1 << 20 // 1 MiB

// decodeJSON parses the request body into v, rejecting unknown garbage
// and oversized payloads as validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return core.ValidationError("request body is required")
		}
		return core.ValidationError("invalid JSON body")
	}
	return nil
}
