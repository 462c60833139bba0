// internal/common/utils/response.go
// Envelope writers used by the sandbox backend. Every Sacavia response body is
// {success, message?, data?, error?, code?}

package utils

import (
	"encoding/json"
	"net/http"
)

// Response is the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse sends a successful response
func SuccessResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	writeEnvelope(w, statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// ErrorResponse sends an error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, statusCode, Response{
		Success: false,
		Error:   message,
	})
}

// CodedErrorResponse sends an error response carrying a machine readable code
func CodedErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	writeEnvelope(w, statusCode, Response{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// MessageResponse sends a simple message response
func MessageResponse(w http.ResponseWriter, message string, statusCode int) {
	writeEnvelope(w, statusCode, Response{
		Success: true,
		Message: message,
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
