package domain

import (
	"fmt"
	"net/http"
	"strings"
)

// Service names used in error messages, metrics and logs.
const (
	ServicePopuli    = "Populi"
	ServiceClassroom = "GitHub"
)

// ConfigurationError reports that a credential required by an operation is missing.
// It is fatal to the invoking operation only.
type ConfigurationError struct {
	// Service is the upstream the operation needed (e.g. "Populi").
	Service string
	// Message is the full operator-facing text, naming the required keys and an example.
	Message string
	// Keys lists the configuration keys the operation requires.
	Keys []string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s requires %s", e.Service, strings.Join(e.Keys, " and "))
}

// APIError is a non-2xx upstream response. Body holds the raw response text.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	detail := e.Body
	if detail == "" {
		detail = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s API %d: %s", e.Service, e.StatusCode, detail)
}

// ValidationError reports tool input that does not satisfy the tool's input schema.
// It is raised before any network call.
type ValidationError struct {
	Tool     string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("invalid input for %s", e.Tool)
	}
	return fmt.Sprintf("invalid input for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}
