package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/bridge-eligibility-ea/internal/cache"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

const orbiterFixture = `{
	"totalTransactions": 120,
	"totalVolume": "150000.50",
	"totalFees": "320.10",
	"uniqueChains": 6,
	"uniqueTokens": 3,
	"firstTransaction": 1700000000000,
	"lastTransaction": 1710000000000,
	"chainDistribution": {
		"ethereum": {"count": 60, "volume": "90000", "percentage": 60},
		"arbitrum": {"count": 60, "volume": "60000.50", "percentage": 40}
	}
}`

func newOrbiterTestServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

func TestOrbiterFetchBridgeActivity(t *testing.T) {
	ts, _ := newOrbiterTestServer(t, http.StatusOK, orbiterFixture)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	res, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, testAddress, res.Address)
	assert.Equal(t, 120, res.TotalTransactions)
	assert.Equal(t, "150000.5", res.TotalVolume.String())
	assert.Equal(t, 6, res.UniqueChains)

	// Scoring is applied on top of the decoded payload.
	assert.Greater(t, res.EligibilityScore, 0)
	assert.Equal(t, model.TierGold, res.Tier, "150k volume, 120 tx, 6 chains clears the gold gates")
	assert.GreaterOrEqual(t, res.PercentileRank, res.EligibilityScore)
}

func TestOrbiterCachesSuccessfulResults(t *testing.T) {
	ts, hits := newOrbiterTestServer(t, http.StatusOK, orbiterFixture)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	first, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.NoError(t, err)
	second, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, 1, *hits, "second fetch should be served from cache")
	assert.Equal(t, first, second)
}

func TestOrbiterInvalidAddressSkipsUpstream(t *testing.T) {
	ts, hits := newOrbiterTestServer(t, http.StatusOK, orbiterFixture)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	_, err := c.FetchBridgeActivity(context.Background(), "not-an-address")
	require.Error(t, err)

	ae := model.AsAnalysisError(err, ServiceOrbiter)
	assert.Equal(t, model.CodeInvalidAddressFormat, ae.Code)
	assert.Equal(t, 0, *hits, "invalid addresses must never reach the upstream")
}

func TestOrbiterUnsupportedAddress(t *testing.T) {
	ts, _ := newOrbiterTestServer(t, http.StatusNotFound, `{"error": "unknown address"}`)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	_, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.Error(t, err)

	ae := model.AsAnalysisError(err, ServiceOrbiter)
	assert.Equal(t, model.CodeUnsupportedAddress, ae.Code)
	assert.False(t, ae.Retryable)
}

func TestOrbiterNonObjectPayload(t *testing.T) {
	ts, _ := newOrbiterTestServer(t, http.StatusOK, `[1, 2, 3]`)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	_, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.Error(t, err)

	ae := model.AsAnalysisError(err, ServiceOrbiter)
	assert.Equal(t, model.CodeMalformedPayload, ae.Code)
}

func TestOrbiterBreakerOpensAfterRepeatedFailures(t *testing.T) {
	ts, hits := newOrbiterTestServer(t, http.StatusNotFound, `{}`)
	c := NewOrbiterClient(testConfig(ts.URL, ""), cache.NewMemoryStore())

	// Threshold is 2 in the test config.
	_, err := c.FetchBridgeActivity(context.Background(), testAddress)
	require.Error(t, err)
	_, err = c.FetchBridgeActivity(context.Background(), testAddress)
	require.Error(t, err)

	_, err = c.FetchBridgeActivity(context.Background(), testAddress)
	require.Error(t, err)
	ae := model.AsAnalysisError(err, ServiceOrbiter)
	assert.Equal(t, model.CodeCircuitOpen, ae.Code)
	assert.Equal(t, 2, *hits, "open breaker must not touch the upstream")
}
