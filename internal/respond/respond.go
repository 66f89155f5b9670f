package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response wrapper used by every endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError carries a validation failure for a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes a success response.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

// ValidationError writes a 400 with field-level messages.
func ValidationError(w http.ResponseWriter, errs []FieldError) {
	write(w, http.StatusBadRequest, Envelope{Success: false, Message: "Validation failed", Errors: errs})
}

// ServerError writes a 500 exposing the underlying error message. Deliberate
// template behavior to aid consumers during development.
func ServerError(w http.ResponseWriter, message string, err error) {
	write(w, http.StatusInternalServerError, Envelope{Success: false, Message: message + ": " + err.Error()})
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
