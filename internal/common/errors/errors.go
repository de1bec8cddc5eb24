// Package errors provides standardized error handling for market workers and
// the generative provider.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeProviderAuthFailed      ErrorCode = "PROVIDER_AUTH_FAILED"
	ErrCodeProviderTimeout         ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderTransportFailed ErrorCode = "PROVIDER_TRANSPORT_FAILED"
	ErrCodeProviderRequestFailed   ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderEmptyResponse   ErrorCode = "PROVIDER_EMPTY_RESPONSE"

	ErrCodeEstimateSchemaViolation ErrorCode = "ESTIMATE_SCHEMA_VIOLATION"

	ErrCodeTrustedTableLoadFailed   ErrorCode = "TRUSTED_TABLE_LOAD_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeEngineRejected    ErrorCode = "ENGINE_REJECTED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// HasCode reports whether err is a StandardError carrying code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	for err != nil {
		if stdErr, ok := err.(*StandardError); ok {
			return stdErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable job input error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderAuthFailedError creates a non-retryable credential error.
func NewProviderAuthFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderAuthFailed,
		Message:   "Generative provider rejected the credential",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderTimeoutError creates a retryable timeout error.
func NewProviderTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "Generative provider call timed out",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderTransportFailedError creates a retryable network error.
func NewProviderTransportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTransportFailed,
		Message:   "Generative provider unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderRequestFailedError creates an error for a provider-side rejection.
func NewProviderRequestFailedError(status int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRequestFailed,
		Message:   "Generative provider request failed",
		Details:   err.Error(),
		Retryable: status >= 500 || status == 429,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProviderEmptyResponseError creates an error for a response without text.
func NewProviderEmptyResponseError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderEmptyResponse,
		Message:   "Generative provider returned no text",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEstimateSchemaViolationError creates a non-retryable schema error.
func NewEstimateSchemaViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEstimateSchemaViolation,
		Message:   "Estimate response violates the output schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrustedTableLoadFailedError creates a startup error for trusted tables.
func NewTrustedTableLoadFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrustedTableLoadFailed,
		Message:   "Trusted market tables could not be loaded",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Estimate cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEngineUnavailableError wraps a transient Zeebe gateway failure.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Message:   fmt.Sprintf("Workflow engine unavailable during %s", operation),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewEngineRejectedError wraps a Zeebe command the gateway refused.
func NewEngineRejectedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineRejected,
		Message:   fmt.Sprintf("Workflow engine rejected %s", operation),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Mapping Helpers
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeProviderAuthFailed:       "PROVIDER_AUTH_FAILED",
	ErrCodeProviderTimeout:          "PROVIDER_TIMEOUT",
	ErrCodeProviderTransportFailed:  "PROVIDER_UNAVAILABLE",
	ErrCodeProviderRequestFailed:    "PROVIDER_UNAVAILABLE",
	ErrCodeProviderEmptyResponse:    "PROVIDER_UNAVAILABLE",
	ErrCodeEstimateSchemaViolation:  "ESTIMATE_SCHEMA_VIOLATION",
	ErrCodeTrustedTableLoadFailed:   "TRUSTED_TABLE_LOAD_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeCacheUnavailable:         "CACHE_UNAVAILABLE",
	ErrCodeEngineUnavailable:        "ENGINE_UNAVAILABLE",
	ErrCodeEngineRejected:           "ENGINE_REJECTED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProviderTransportFailed,
		ErrCodeProviderRequestFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeCacheUnavailable,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeProviderTimeout,
		ErrCodeProviderEmptyResponse:
		return 1

	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "TRUSTED"):
		return "STORAGE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "ENGINE"):
		return "ENGINE"
	default:
		return "OTHER"
	}
}
