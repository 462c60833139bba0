// internal/apiclient/envelope.go
// Decoder for the {success, data, message, error, code} envelope every backend route returns

package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
)

// GenericFailure is reported when success=false carries neither error nor message.
const GenericFailure = "Request failed"

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Pagination is the page descriptor attached to every list response.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// HasData reports whether data is present and not JSON null.
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// failure converts a success=false envelope into a server error.
func (e *Envelope) failure(status int) *APIError {
	msg := strings.TrimSpace(e.Error)
	if msg == "" {
		msg = strings.TrimSpace(e.Message)
	}
	if msg == "" {
		msg = GenericFailure
	}
	return &APIError{Kind: KindServer, Status: status, Message: msg, Code: e.Code}
}

// ParseEnvelope reads the envelope and fails on success=false. Absent "success" counts as false.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Kind: KindMalformedResponse, Message: "response is not a valid envelope", Err: err}
	}
	if !env.Success {
		return &env, env.failure(0)
	}
	return &env, nil
}

// Decode unwraps data into T. success=true without data is malformed, never a zero value.
func Decode[T any](body []byte) (T, error) {
	var out T
	env, err := ParseEnvelope(body)
	if err != nil {
		return out, err
	}
	if !env.HasData() {
		return out, &APIError{Kind: KindMalformedResponse, Message: "response has no data"}
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &APIError{Kind: KindMalformedResponse, Message: "response data has unexpected shape", Err: err}
	}
	return out, nil
}

// messageFromBody extracts a readable message from an error response body, if any.
func messageFromBody(body []byte) (message, code string) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", ""
	}
	message = strings.TrimSpace(env.Error)
	if message == "" {
		message = strings.TrimSpace(env.Message)
	}
	return message, env.Code
}
