package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/bridge-eligibility-ea/internal/config"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

const testAddress = "0x1234567890123456789012345678901234567890"

func testConfig(orbiterURL, hopURL string) config.Config {
	return config.Config{
		OrbiterURL:              orbiterURL,
		HopURL:                  hopURL,
		RequestTimeout:          2 * time.Second,
		MaxRetries:              0,
		RetryWaitMin:            time.Millisecond,
		RetryWaitMax:            5 * time.Millisecond,
		CacheTTL:                time.Minute,
		BreakerFailureThreshold: 2,
		BreakerCooldown:         time.Minute,
		APIKeys:                 map[string]string{},
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid lowercase", testAddress, false},
		{"valid checksummed", "0x52908400098527886E0F7030069857D2E4169EE7", false},
		{"missing prefix", "1234567890123456789012345678901234567890", true},
		{"too short", "0x12345", true},
		{"non-hex characters", "0xZZ34567890123456789012345678901234567890", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAddress(tt.address, ServiceOrbiter)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateAddress(%q) error = %v, wantErr %v", tt.address, err, tt.wantErr)
			}
			if err != nil {
				ae := model.AsAnalysisError(err, ServiceOrbiter)
				if ae.Code != model.CodeInvalidAddressFormat {
					t.Errorf("code = %s, want %s", ae.Code, model.CodeInvalidAddressFormat)
				}
				if ae.Retryable {
					t.Error("address format errors must not be retryable")
				}
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey(ServiceOrbiter, "0xABCDEF1234567890123456789012345678901234")
	b := cacheKey(ServiceOrbiter, "0xabcdef1234567890123456789012345678901234")
	if a != b {
		t.Error("cache keys should be case-insensitive over the address")
	}
	if a == cacheKey(ServiceHop, "0xabcdef1234567890123456789012345678901234") {
		t.Error("cache keys must be namespaced per service")
	}
}

func TestClassifyTransportError(t *testing.T) {
	timeoutErr := classifyTransportError(context.DeadlineExceeded, ServiceHop)
	if timeoutErr.Code != model.CodeUpstreamTimeout || !timeoutErr.Retryable {
		t.Errorf("deadline exceeded classified as %s retryable=%v", timeoutErr.Code, timeoutErr.Retryable)
	}

	otherErr := classifyTransportError(errors.New("connection refused"), ServiceHop)
	if otherErr.Code != model.CodeUpstreamError || !otherErr.Retryable {
		t.Errorf("transport error classified as %s retryable=%v", otherErr.Code, otherErr.Retryable)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  string
		retryable bool
	}{
		{429, model.CodeUpstreamRateLimited, true},
		{400, model.CodeUnsupportedAddress, false},
		{404, model.CodeUnsupportedAddress, false},
		{500, model.CodeUpstreamError, true},
		{503, model.CodeUpstreamError, true},
	}

	for _, tt := range tests {
		ae := classifyStatus(tt.status, ServiceOrbiter)
		if ae.Code != tt.wantCode {
			t.Errorf("classifyStatus(%d) code = %s, want %s", tt.status, ae.Code, tt.wantCode)
		}
		if ae.Retryable != tt.retryable {
			t.Errorf("classifyStatus(%d) retryable = %v, want %v", tt.status, ae.Retryable, tt.retryable)
		}
	}
}
