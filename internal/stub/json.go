package stub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// envelope is the uniform response shape every stub endpoint returns.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// writeEnvelope writes a success envelope with the given status code.
// Logs encoding failures internally using the provided context.
func writeEnvelope(ctx context.Context, w http.ResponseWriter, status int, data any) {
	write(ctx, w, status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeError writes a failure envelope carrying the given message.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	write(ctx, w, status, envelope{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func write(ctx context.Context, w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status go out before encoding; if encoding fails the client
	// may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}
