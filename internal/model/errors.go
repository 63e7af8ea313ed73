package model

import (
	"errors"
	"fmt"
	"time"
)

// Severity classifies how serious an AnalysisError is.
type Severity string

// Error severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes used across the analysis pipeline.
const (
	CodeInvalidAddress       = "INVALID_ADDRESS"
	CodeInvalidAddressFormat = "INVALID_ADDRESS_FORMAT"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeInternalServerError  = "INTERNAL_SERVER_ERROR"
	CodeUpstreamTimeout      = "UPSTREAM_TIMEOUT"
	CodeUpstreamError        = "UPSTREAM_ERROR"
	CodeUpstreamRateLimited  = "UPSTREAM_RATE_LIMITED"
	CodeUnsupportedAddress   = "UNSUPPORTED_ADDRESS"
	CodeMalformedPayload     = "MALFORMED_PAYLOAD"
	CodeCircuitOpen          = "CIRCUIT_OPEN"
)

// AnalysisError is the typed error carried through the analysis pipeline.
// Adapter failures are recovered locally by the aggregator and surface here
// instead of aborting the request.
type AnalysisError struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Service   string                 `json:"service"`
	Severity  Severity               `json:"severity"`
	Retryable bool                   `json:"retryable"`
	Timestamp int64                  `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Service, e.Code, e.Message)
}

// NewAnalysisError creates a timestamped AnalysisError.
func NewAnalysisError(code, message, service string, severity Severity, retryable bool) *AnalysisError {
	return &AnalysisError{
		Code:      code,
		Message:   message,
		Service:   service,
		Severity:  severity,
		Retryable: retryable,
		Timestamp: time.Now().UnixMilli(),
	}
}

// WithContext attaches a context entry to the error and returns it.
func (e *AnalysisError) WithContext(key string, value interface{}) *AnalysisError {
	if e.Context == nil {
		e.Context = map[string]interface{}{}
	}
	e.Context[key] = value
	return e
}

// AsAnalysisError coerces any error into an AnalysisError for the given
// service. Errors that already are AnalysisErrors pass through unchanged;
// anything else is treated as an internal, retryable failure.
func AsAnalysisError(err error, service string) *AnalysisError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae
	}
	return NewAnalysisError(CodeUpstreamError, err.Error(), service, SeverityMedium, true)
}
