package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Constructors
// ==========================

func TestConstructors(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")

	tests := []struct {
		name          string
		err           *StandardError
		wantCode      ErrorCode
		wantRetryable bool
	}{
		{"invalid input", NewInvalidInputError("market: required"), ErrCodeInvalidInput, false},
		{"auth", NewProviderAuthFailedError(cause), ErrCodeProviderAuthFailed, false},
		{"timeout", NewProviderTimeoutError(cause), ErrCodeProviderTimeout, true},
		{"transport", NewProviderTransportFailedError(cause), ErrCodeProviderTransportFailed, true},
		{"bad request", NewProviderRequestFailedError(400, cause), ErrCodeProviderRequestFailed, false},
		{"rate limited", NewProviderRequestFailedError(429, cause), ErrCodeProviderRequestFailed, true},
		{"server error", NewProviderRequestFailedError(502, cause), ErrCodeProviderRequestFailed, true},
		{"schema", NewEstimateSchemaViolationError("[0].clinicCount: invalid type"), ErrCodeEstimateSchemaViolation, false},
		{"trusted load", NewTrustedTableLoadFailedError("trusted.yaml", cause), ErrCodeTrustedTableLoadFailed, false},
		{"database", NewDatabaseConnectionFailedError(cause), ErrCodeDatabaseConnectionFailed, true},
		{"cache", NewCacheUnavailableError(cause), ErrCodeCacheUnavailable, true},
		{"engine unavailable", NewEngineUnavailableError("topology", cause), ErrCodeEngineUnavailable, true},
		{"engine rejected", NewEngineRejectedError("complete", cause), ErrCodeEngineRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantRetryable, tt.err.Retryable)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.wantCode))
		})
	}
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("request: %w", stderrors.New("deadline"))
	err := fmt.Errorf("generate: %w", NewProviderTimeoutError(cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, ErrCodeProviderTimeout))
	assert.False(t, HasCode(err, ErrCodeProviderAuthFailed))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeProviderTimeout, stdErr.Code)

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
	assert.False(t, HasCode(nil, ErrCodeInvalidInput))
}

// ==========================
// BPMN conversion
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"transport collapses to unavailable", NewProviderTransportFailedError(stderrors.New("x")), "PROVIDER_UNAVAILABLE", 3},
		{"timeout retried once", NewProviderTimeoutError(stderrors.New("x")), "PROVIDER_TIMEOUT", 1},
		{"non-retryable request failure", NewProviderRequestFailedError(400, stderrors.New("x")), "PROVIDER_UNAVAILABLE", 0},
		{"invalid input never retried", NewInvalidInputError("x"), "INVALID_INPUT", 0},
		{"unmapped code passes through", &StandardError{Code: "INTERNAL_ERROR", Message: "x"}, "INTERNAL_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeProviderTimeout))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeEstimateSchemaViolation))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeTrustedTableLoadFailed))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "ENGINE", GetErrorCategory(ErrCodeEngineRejected))
	assert.Equal(t, "OTHER", GetErrorCategory("INTERNAL_ERROR"))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeProviderTransportFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeEngineUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeProviderAuthFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeEstimateSchemaViolation))
}

// ==========================
// Job error handler
// ==========================

type recordingLogger struct {
	msgs []string
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.msgs = append(l.msgs, msg)
}

func TestErrorHandler_NormalizeError(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	known := NewInvalidInputError("market: required")
	assert.Same(t, known, h.normalizeError(fmt.Errorf("parse: %w", known)))

	plain := stderrors.New("unexpected nil record")
	got := h.normalizeError(plain)
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), got.Code)
	assert.False(t, got.Retryable)
	assert.Equal(t, "unexpected nil record", got.Details)
	assert.ErrorIs(t, got, plain)
}
