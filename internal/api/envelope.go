package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the uniform response shape returned by every backend endpoint:
// a success flag, an optional payload, an optional error message, and a
// server-side timestamp. Data stays raw so the transport layer is untyped;
// resource services decode it into their own types.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// decode unmarshals the envelope's data payload into T.
func decode[T any](env *Envelope) (T, error) {
	var v T
	if env == nil || len(env.Data) == 0 {
		return v, fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decoding response data: %w", err)
	}
	return v, nil
}
