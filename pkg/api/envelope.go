package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wrapper every gateway response arrives in. The payload
// itself is kept raw so callers can decode it into the shape they expect.
type Envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *Error          `json:"error,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// Error is the structured error carried inside a failed envelope.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`

	// Status is the HTTP status the envelope arrived with. Not part of the
	// wire format; filled in by the transport for callers that need it.
	Status int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error: %s", e.Message)
}

// Err converts a failed envelope into an *Error, synthesizing one when the
// backend omitted the error object but still reported failure.
func (env *Envelope) Err(status int) error {
	if env.Success && env.Error == nil {
		return nil
	}
	apiErr := env.Error
	if apiErr == nil {
		apiErr = &Error{Message: env.Message}
	}
	if apiErr.Message == "" {
		apiErr.Message = env.Message
	}
	apiErr.Status = status
	return apiErr
}

// Decode unmarshals the envelope's data payload into out. A nil out discards
// the payload.
func (env *Envelope) Decode(out any) error {
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("envelope has no data payload")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode envelope data: %w", err)
	}
	return nil
}
