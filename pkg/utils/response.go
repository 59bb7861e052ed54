package utils

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		slog.Error("failed to encode response", "err", err, "status", status)
	}
}

// RespondError 发送错误响应
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorBody{Error: message})
}

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondHTML writes an HTML fragment.
func RespondHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(html)); err != nil {
		slog.Error("failed to write response", "err", err, "status", status)
	}
}
