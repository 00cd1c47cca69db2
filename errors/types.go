package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Worktree errors
	ErrCodeWorktreeNotFound   ErrorCode = "WORKTREE_NOT_FOUND"
	ErrCodeMetadataMissing    ErrorCode = "METADATA_MISSING"
	ErrCodeMetadataParse      ErrorCode = "METADATA_PARSE"
	ErrCodeMetadataValidation ErrorCode = "METADATA_VALIDATION"

	// Git errors
	ErrCodeGitCommand ErrorCode = "GIT_COMMAND"
	ErrCodeGitTimeout ErrorCode = "GIT_TIMEOUT"

	// AI-agent session errors
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeSessionResume       ErrorCode = "SESSION_RESUME"

	// Configuration errors
	ErrCodeConfigInvalid ErrorCode = "CONFIG_INVALID"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// ArborError represents a structured error with context
type ArborError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *ArborError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ArborError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *ArborError) WithDetail(key string, value interface{}) *ArborError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *ArborError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new ArborError
func New(code ErrorCode, message string) *ArborError {
	return &ArborError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an ArborError
func Wrap(err error, code ErrorCode, message string) *ArborError {
	return &ArborError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific ArborError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	arborErr, ok := err.(*ArborError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return arborErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	arborErr, ok := err.(*ArborError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return arborErr.Code
}
