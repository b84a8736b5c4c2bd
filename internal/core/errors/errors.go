package errors

const (
	HttpInternalError    = "internal_error"
	HttpInvalidJsonError = "invalid_json"
	HttpValidationError  = "validation_failed"
	HttpTimezoneError    = "timezone_resolution_failed"
	HttpTransactionError = "transaction_failed"
)

// ErrorResponse is the error response body for ingestion errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
