// Package fetch provides protocol-specific clients for retrieving bridging
// and liquidity-provision activity from external data sources.
package fetch

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/bridge-eligibility-ea/internal/config"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

// BridgeProvider fetches simple bridge activity for an address.
type BridgeProvider interface {
	FetchBridgeActivity(ctx context.Context, address string) (*model.ProtocolActivityResult, error)
}

// BridgeLPProvider fetches bridge plus liquidity-provision activity.
type BridgeLPProvider interface {
	FetchBridgeLPActivity(ctx context.Context, address string) (*model.BridgeAndLPActivityResult, error)
}

// newRetryClient creates an HTTP client with bounded retries and linear
// backoff for transient upstream failures.
func newRetryClient(cfg config.Config) *http.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.MaxRetries
	c.RetryWaitMin = cfg.RetryWaitMin
	c.RetryWaitMax = cfg.RetryWaitMax
	c.Backoff = retryablehttp.LinearJitterBackoff
	c.Logger = nil
	return c.StandardClient()
}

// getAPIKey retrieves an API key for a specific provider from configuration
func getAPIKey(cfg config.Config, provider string) string {
	if k, ok := cfg.APIKeys[provider]; ok {
		return k
	}
	return ""
}

// validateAddress rejects anything that is not a 0x-prefixed 40-hex-char
// address before any upstream call is made.
func validateAddress(address, service string) error {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return model.NewAnalysisError(
			model.CodeInvalidAddressFormat,
			"address must match ^0x[a-fA-F0-9]{40}$",
			service,
			model.SeverityLow,
			false,
		)
	}
	return nil
}

// cacheKey namespaces cached results per service and address so entries never
// leak between unrelated requests.
func cacheKey(service, address string) string {
	return service + ":" + strings.ToLower(address)
}

// classifyTransportError converts a transport-level failure into a classified
// AnalysisError. Timeouts and cancellations are transient.
func classifyTransportError(err error, service string) *model.AnalysisError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return model.NewAnalysisError(
			model.CodeUpstreamTimeout,
			service+" request timed out",
			service,
			model.SeverityHigh,
			true,
		)
	}
	return model.NewAnalysisError(
		model.CodeUpstreamError,
		err.Error(),
		service,
		model.SeverityMedium,
		true,
	)
}

// classifyStatus converts a non-200 response into a classified AnalysisError.
func classifyStatus(status int, service string) *model.AnalysisError {
	switch {
	case status == http.StatusTooManyRequests:
		return model.NewAnalysisError(
			model.CodeUpstreamRateLimited,
			service+" rate limited the request",
			service,
			model.SeverityMedium,
			true,
		)
	case status == http.StatusBadRequest || status == http.StatusNotFound:
		return model.NewAnalysisError(
			model.CodeUnsupportedAddress,
			service+" does not recognize this address",
			service,
			model.SeverityLow,
			false,
		)
	default:
		return model.NewAnalysisError(
			model.CodeUpstreamError,
			service+" returned an unexpected status",
			service,
			model.SeverityMedium,
			true,
		).WithContext("status", status)
	}
}

// circuitOpenError is returned when the breaker rejects a call without
// touching the upstream.
func circuitOpenError(service string) *model.AnalysisError {
	return model.NewAnalysisError(
		model.CodeCircuitOpen,
		service+" circuit breaker is open",
		service,
		model.SeverityMedium,
		true,
	)
}
