package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	// Load errors
	ErrEmptyInput        = errors.New("input is empty")
	ErrZeroColumns       = errors.New("input has zero columns")
	ErrMalformedCSV      = errors.New("malformed CSV input")
	ErrUnreadableInput   = errors.New("input is unreadable")
	ErrRowLengthMismatch = errors.New("row length does not match header")

	// Stage errors
	ErrStageFailed      = errors.New("cleaning stage failed")
	ErrColumnSkipped    = errors.New("column skipped by stage")
	ErrCleaningCanceled = errors.New("cleaning canceled")

	// Statistic errors
	ErrStatisticUndefined = errors.New("statistic undefined for column")
	ErrNoEligibleValues   = errors.New("no eligible values in column")

	// Report errors
	ErrReportFailed     = errors.New("report generation failed")
	ErrProviderNotFound = errors.New("report provider not found")
	ErrMissingAPIKey    = errors.New("missing API key")

	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrConfigurationLoad    = errors.New("failed to load configuration")

	// Internal errors
	ErrInternal    = errors.New("internal error")
	ErrUnavailable = errors.New("service unavailable")
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeLoad          ErrorType = "load"
	ErrorTypeStage         ErrorType = "stage"
	ErrorTypeStatistic     ErrorType = "statistic"
	ErrorTypeReport        ErrorType = "report"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// NewLoadError creates a load error. Load errors are the only errors that
// abort the whole pipeline and surface to the caller.
func NewLoadError(code, message string) *AppError {
	return NewAppError(ErrorTypeLoad, code, message)
}

// NewStageError creates a per-column stage error
func NewStageError(code, message string) *AppError {
	return NewAppError(ErrorTypeStage, code, message)
}

// NewStatisticError creates a statistic-undefined error
func NewStatisticError(code, message string) *AppError {
	return NewAppError(ErrorTypeStatistic, code, message)
}

// NewReportError creates a report generation error
func NewReportError(code, message string) *AppError {
	return NewAppError(ErrorTypeReport, code, message)
}

// NewValidationError creates a request validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       CodeInternalError,
		Message:    message,
		HTTPStatus: 500,
	}
}

// AsAppError unwraps err to an AppError if one is in the chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsLoadError reports whether err is (or wraps) a load error
func IsLoadError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeLoad
	}
	return false
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeLoad, ErrorTypeValidation:
		return 400
	case ErrorTypeStage, ErrorTypeStatistic, ErrorTypeInternal:
		return 500
	case ErrorTypeReport, ErrorTypeConfiguration:
		return 503
	default:
		return 500
	}
}

// ErrorResponse represents an error response for APIs
type ErrorResponse struct {
	Error     *AppError `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp string    `json:"timestamp"`
	Path      string    `json:"path,omitempty"`
}

// Error codes for different error scenarios
const (
	// Load error codes
	CodeLoadFailed        = "LOAD_FAILED"
	CodeEmptyInput        = "EMPTY_INPUT"
	CodeZeroColumns       = "ZERO_COLUMNS"
	CodeMalformedCSV      = "MALFORMED_CSV"
	CodeRowLengthMismatch = "ROW_LENGTH_MISMATCH"

	// Stage error codes
	CodeStageFailed      = "STAGE_FAILED"
	CodeColumnSkipped    = "COLUMN_SKIPPED"
	CodeCleaningCanceled = "CLEANING_CANCELED"

	// Statistic error codes
	CodeStatisticUndefined = "STATISTIC_UNDEFINED"
	CodeNoEligibleValues   = "NO_ELIGIBLE_VALUES"

	// Report error codes
	CodeReportFailed     = "REPORT_FAILED"
	CodeProviderNotFound = "PROVIDER_NOT_FOUND"
	CodeMissingAPIKey    = "MISSING_API_KEY"

	// Validation error codes
	CodeInvalidInput    = "INVALID_INPUT"
	CodeMissingField    = "MISSING_FIELD"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeRequestTooLarge = "REQUEST_TOO_LARGE"

	// Configuration error codes
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeMissingConfiguration = "MISSING_CONFIGURATION"

	// Internal error codes
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
