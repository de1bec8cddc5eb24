// internal/market/result.go
package market

import (
	"context"
	"errors"

	apperrors "market-intel/internal/common/errors"
)

var (
	ErrTransport = errors.New("provider transport failed")
	ErrTimeout   = errors.New("provider call timed out")
	ErrAuth      = errors.New("provider rejected the credential")
	ErrSchema    = errors.New("provider response violates the output schema")
	ErrProvider  = errors.New("provider request failed")
)

// Source says where a result came from.
type Source string

const (
	SourceTrusted   Source = "trusted"
	SourceEstimated Source = "estimated"
	SourceCached    Source = "cached"
)

// FailureKind is the typed reason a provider-backed operation produced an
// empty or default result. The zero value means success.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransport FailureKind = "transport"
	FailureTimeout   FailureKind = "timeout"
	FailureAuth      FailureKind = "auth"
	FailureSchema    FailureKind = "schema"
	FailureProvider  FailureKind = "provider"
	FailureCanceled  FailureKind = "canceled"
)

// MatrixResult is the outcome of resolving one market.
type MatrixResult struct {
	RequestID string             `json:"requestId"`
	Market    string             `json:"market"`
	Source    Source             `json:"source"`
	TableKey  string             `json:"tableKey,omitempty"`
	Records   []CompetitorRecord `json:"records"`
	Repairs   RepairReport       `json:"repairs"`
	Failure   FailureKind        `json:"failure,omitempty"`
}

// DetailResult is the outcome of a competitor detail lookup.
type DetailResult struct {
	RequestID string           `json:"requestId"`
	Detail    CompetitorDetail `json:"detail"`
	Failure   FailureKind      `json:"failure,omitempty"`
}

// ConverseResult is the outcome of one research question.
type ConverseResult struct {
	RequestID string      `json:"requestId"`
	Answer    string      `json:"answer"`
	Failure   FailureKind `json:"failure,omitempty"`
}

// classifyFailure maps an error from any layer to a FailureKind. Caller
// cancellation is checked first so it is never reported as a timeout.
func classifyFailure(ctx context.Context, err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return FailureCanceled
	}

	switch {
	case errors.Is(err, ErrSchema), apperrors.HasCode(err, apperrors.ErrCodeEstimateSchemaViolation):
		return FailureSchema
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded),
		apperrors.HasCode(err, apperrors.ErrCodeProviderTimeout):
		return FailureTimeout
	case errors.Is(err, ErrAuth), apperrors.HasCode(err, apperrors.ErrCodeProviderAuthFailed):
		return FailureAuth
	case errors.Is(err, ErrTransport), apperrors.HasCode(err, apperrors.ErrCodeProviderTransportFailed):
		return FailureTransport
	default:
		return FailureProvider
	}
}
