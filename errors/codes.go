package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// ErrCodeInvalidInput indicates an argument or config value is invalid.
const ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
