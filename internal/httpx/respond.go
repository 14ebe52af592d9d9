package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// FieldErrors carries per-field validation messages, serialized on 400
// responses as {"errors": {field: message}}.
type FieldErrors map[string]string

func (e FieldErrors) Error() string { return "validation failed" }

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

func ValidationFailed(w http.ResponseWriter, errs FieldErrors) {
	JSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// Internal logs the real error and hides it from the client.
func Internal(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Error("request failed", "err", err)
	Message(w, http.StatusInternalServerError, "internal server error")
}
