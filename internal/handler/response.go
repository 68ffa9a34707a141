package handler

import (
	"encoding/json"
	"net/http"

	"log/slog"
)

// Every error response is {"error": message}; success responses return the
// resource itself, or {"success": true} for fire-and-forget mutations.

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServerError logs the real failure and hands the client a generic
// message; storage and infra details never leave the process.
func writeServerError(w http.ResponseWriter, err error) {
	slog.Error("unexpected error", "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
