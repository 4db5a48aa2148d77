package models

// ErrorDetail is the transport-neutral error every service method reports.
type ErrorDetail struct {
	// Code is a JSON-RPC style error code (see internal/errors).
	Code int `json:"code"`
	// Message is a human-readable summary.
	Message string `json:"message"`
	// Data carries context such as the path and operation involved.
	Data interface{} `json:"data,omitempty"`
}

// ErrorResponse wraps an ErrorDetail for HTTP bodies.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status           string `json:"status"`
	WorkingDirectory string `json:"working_directory"`
	Version          string `json:"version"`
}
