package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

const testAddress = "0x1234567890123456789012345678901234567890"

func mustDecode(t *testing.T, payload string) interface{} {
	t.Helper()
	var raw interface{}
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestBridgeActivityEmptyObject(t *testing.T) {
	res, err := BridgeActivity(mustDecode(t, `{}`), testAddress, "orbiter")
	require.NoError(t, err)

	assert.Equal(t, testAddress, res.Address)
	assert.Equal(t, 0, res.TotalTransactions)
	assert.True(t, res.TotalVolume.IsZero())
	assert.True(t, res.TotalFees.IsZero())
	assert.Equal(t, 0, res.UniqueChains)
	assert.Equal(t, int64(0), res.FirstTransaction)
	assert.Equal(t, int64(0), res.LastTransaction)
	assert.Equal(t, 0, res.EligibilityScore)
	assert.Equal(t, model.TierNone, res.Tier)
	assert.NotNil(t, res.ChainDistribution)
	assert.Empty(t, res.ChainDistribution)
	assert.Empty(t, res.RoutePatterns)
	assert.Empty(t, res.MonthlyActivity)
}

func TestBridgeActivityStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload interface{}
	}{
		{"nil payload", nil},
		{"array payload", mustDecode(t, `[1, 2, 3]`)},
		{"scalar payload", mustDecode(t, `"not an object"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := BridgeActivity(tt.payload, testAddress, "orbiter")
			require.Error(t, err)
			assert.Nil(t, res)

			ae := model.AsAnalysisError(err, "orbiter")
			assert.Equal(t, model.CodeMalformedPayload, ae.Code)
			assert.False(t, ae.Retryable)
		})
	}
}

func TestBridgeActivityDecimalPrecision(t *testing.T) {
	raw := mustDecode(t, `{"totalVolume": "123456.789012345678", "totalFees": "0.000000000000000001"}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	assert.Equal(t, "123456.789012345678", res.TotalVolume.String())
	assert.Equal(t, "0.000000000000000001", res.TotalFees.String())
}

func TestBridgeActivityClamping(t *testing.T) {
	raw := mustDecode(t, `{
		"totalTransactions": -5,
		"totalVolume": "not-a-number",
		"uniqueChains": -1,
		"eligibilityScore": 150,
		"percentileRank": -20,
		"tier": "diamond",
		"activityPatterns": {"volumeConsistency": 1.4, "chainDiversity": -0.2, "averageFrequency": -3}
	}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalTransactions)
	assert.True(t, res.TotalVolume.IsZero())
	assert.Equal(t, 0, res.UniqueChains)
	assert.Equal(t, 100, res.EligibilityScore)
	assert.Equal(t, 0, res.PercentileRank)
	assert.Equal(t, model.TierNone, res.Tier)
	assert.Equal(t, 1.0, res.ActivityPatterns.VolumeConsistency)
	assert.Equal(t, 0.0, res.ActivityPatterns.ChainDiversity)
	assert.Equal(t, 0.0, res.ActivityPatterns.AverageFrequency)
}

func TestBridgeActivityNumericOverflow(t *testing.T) {
	raw := mustDecode(t, `{
		"firstTransaction": 1e300,
		"lastTransaction": 1e300,
		"totalTransactions": 1e300,
		"eligibilityScore": 1e300
	}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.FirstTransaction, "values beyond int64 range coalesce to zero")
	assert.Equal(t, int64(0), res.LastTransaction)
	assert.Equal(t, 0, res.TotalTransactions)
	assert.Equal(t, 0, res.EligibilityScore)
}

func TestBridgeActivityReversedTimestamps(t *testing.T) {
	raw := mustDecode(t, `{"firstTransaction": 2000, "lastTransaction": 1000}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	assert.Equal(t, int64(1000), res.FirstTransaction)
	assert.Equal(t, int64(2000), res.LastTransaction)
}

func TestBridgeActivityChainNormalization(t *testing.T) {
	raw := mustDecode(t, `{
		"chainDistribution": {"ARBITRUM": {"count": 3, "volume": "100", "percentage": 120}},
		"routePatterns": [{"fromChain": "Ethereum", "toChain": "arb", "count": 2, "volume": "50"}]
	}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	entry, ok := res.ChainDistribution["arbitrum"]
	require.True(t, ok, "chain label should be normalized to lowercase canonical form")
	assert.Equal(t, 3, entry.Count)
	assert.Equal(t, 100.0, entry.Percentage, "percentage should clamp to 100")

	require.Len(t, res.RoutePatterns, 1)
	assert.Equal(t, "ethereum", res.RoutePatterns[0].FromChain)
	assert.Equal(t, "arbitrum", res.RoutePatterns[0].ToChain)
}

func TestBridgeActivityMonthlyOrdering(t *testing.T) {
	raw := mustDecode(t, `{"monthlyActivity": [
		{"month": "2024-03", "count": 1},
		{"month": "2024-01", "count": 2},
		{"month": "2024-02", "count": 3}
	]}`)
	res, err := BridgeActivity(raw, testAddress, "orbiter")
	require.NoError(t, err)

	require.Len(t, res.MonthlyActivity, 3)
	assert.Equal(t, "2024-01", res.MonthlyActivity[0].Month)
	assert.Equal(t, "2024-02", res.MonthlyActivity[1].Month)
	assert.Equal(t, "2024-03", res.MonthlyActivity[2].Month)
}

func TestBridgeAndLPActivityEmptyObject(t *testing.T) {
	res, err := BridgeAndLPActivity(mustDecode(t, `{}`), testAddress, "hop")
	require.NoError(t, err)

	assert.Equal(t, testAddress, res.BridgeActivity.Address)
	assert.Equal(t, 0, res.LPActivity.TotalPositions)
	assert.True(t, res.LPActivity.TotalLiquidityProvided.IsZero())
	assert.Equal(t, 1.0, res.EligibilityMetrics.LPBonusMultiplier, "multiplier floor is 1")
	assert.Empty(t, res.CrossChainRoutes)
	assert.Empty(t, res.ActivityTimeline)
}

func TestBridgeAndLPActivityPositionsClamp(t *testing.T) {
	raw := mustDecode(t, `{"lpActivity": {"totalPositions": 2, "activePositions": 5}}`)
	res, err := BridgeAndLPActivity(raw, testAddress, "hop")
	require.NoError(t, err)

	assert.Equal(t, 2, res.LPActivity.TotalPositions)
	assert.Equal(t, 2, res.LPActivity.ActivePositions, "active positions cannot exceed total")
}

func TestBridgeAndLPActivityTimeline(t *testing.T) {
	raw := mustDecode(t, `{"activityTimeline": [
		{"timestamp": 3000, "type": "teleport", "amount": "10", "chain": "optimism"},
		{"timestamp": 1000, "type": "lp_deposit", "amount": "20", "chain": "arbitrum"}
	]}`)
	res, err := BridgeAndLPActivity(raw, testAddress, "hop")
	require.NoError(t, err)

	require.Len(t, res.ActivityTimeline, 2)
	assert.Equal(t, int64(1000), res.ActivityTimeline[0].Timestamp, "timeline sorted ascending")
	assert.Equal(t, model.EventLPDeposit, res.ActivityTimeline[0].Type)
	assert.Equal(t, model.EventBridge, res.ActivityTimeline[1].Type, "unknown event types default to bridge")
}

func TestBridgeAndLPActivityBonusMultiplierFloor(t *testing.T) {
	raw := mustDecode(t, `{"eligibilityMetrics": {"lpBonusMultiplier": 0.4, "combinedScore": 250}}`)
	res, err := BridgeAndLPActivity(raw, testAddress, "hop")
	require.NoError(t, err)

	assert.Equal(t, 1.0, res.EligibilityMetrics.LPBonusMultiplier)
	assert.Equal(t, 100, res.EligibilityMetrics.CombinedScore)
}
