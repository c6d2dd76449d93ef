package errors

// ErrorInfo contains detailed error information returned to clients.
type ErrorInfo struct {
	Code    string `json:"code"`    // Business error code, e.g., "TOKEN_EXPIRED"
	Details string `json:"details"` // Detailed error description
}

// Response defines the unified error response envelope used by the HTTP error handler.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`    // HTTP status code
	Message string     `json:"message"` // User-friendly message
	Error   *ErrorInfo `json:"error,omitempty"`
}
