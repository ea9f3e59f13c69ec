// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "time"

// Request field names. Bodies are inspected field by field so that
// presence can be judged on the raw JSON value.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldContent = "content"
	FieldUserID  = "userId"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Hostname  string    `json:"hostname"`
}

// ReadyResponse is returned by GET /readyz.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
