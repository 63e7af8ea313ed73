// Package transform converts untrusted adapter payloads into the canonical
// data model. Decoding is total: missing or malformed fields coalesce to safe
// defaults and every bounded value is clamped here, not downstream. Only a
// nil or non-object payload is rejected, with a structural AnalysisError.
package transform

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/bridge-eligibility-ea/internal/model"
	"github.com/yourorg/bridge-eligibility-ea/internal/types"
)

// BridgeActivity decodes a raw bridge-activity payload into a
// ProtocolActivityResult for the given address.
func BridgeActivity(raw interface{}, address, service string) (*model.ProtocolActivityResult, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, structuralError(service)
	}
	res := decodeBridgeActivity(obj, address)
	return &res, nil
}

// BridgeAndLPActivity decodes a raw bridge+LP payload into a
// BridgeAndLPActivityResult for the given address.
func BridgeAndLPActivity(raw interface{}, address, service string) (*model.BridgeAndLPActivityResult, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, structuralError(service)
	}

	res := &model.BridgeAndLPActivityResult{
		BridgeActivity:     decodeBridgeActivity(asObject(obj["bridgeActivity"]), address),
		LPActivity:         decodeLPActivity(asObject(obj["lpActivity"])),
		CrossChainRoutes:   decodeCrossChainRoutes(obj["crossChainRoutes"]),
		EligibilityMetrics: decodeEligibilityMetrics(asObject(obj["eligibilityMetrics"])),
		ActivityTimeline:   decodeTimeline(obj["activityTimeline"]),
	}
	return res, nil
}

func structuralError(service string) *model.AnalysisError {
	return model.NewAnalysisError(
		model.CodeMalformedPayload,
		"payload is not a JSON object",
		service,
		model.SeverityHigh,
		false,
	)
}

func decodeBridgeActivity(obj map[string]interface{}, address string) model.ProtocolActivityResult {
	first := asEpoch(obj["firstTransaction"])
	last := asEpoch(obj["lastTransaction"])
	if first > last {
		// Upstreams occasionally report the pair reversed.
		first, last = last, first
	}

	res := model.ProtocolActivityResult{
		Address:                address,
		TotalTransactions:      asNonNegInt(obj["totalTransactions"]),
		TotalVolume:            asDecimal(obj["totalVolume"]),
		TotalFees:              asDecimal(obj["totalFees"]),
		UniqueChains:           asNonNegInt(obj["uniqueChains"]),
		UniqueTokens:           asNonNegInt(obj["uniqueTokens"]),
		FirstTransaction:       first,
		LastTransaction:        last,
		AverageTransactionSize: asDecimal(obj["averageTransactionSize"]),
		ChainDistribution:      decodeDistribution(obj["chainDistribution"], true),
		TokenDistribution:      decodeDistribution(obj["tokenDistribution"], false),
		RoutePatterns:          decodeRoutePatterns(obj["routePatterns"]),
		MonthlyActivity:        decodeMonthlyActivity(obj["monthlyActivity"]),
		EligibilityScore:       clampScore(asInt(obj["eligibilityScore"])),
		Tier:                   asTier(obj["tier"]),
		PercentileRank:         clampScore(asInt(obj["percentileRank"])),
		ActivityPatterns:       decodeActivityPatterns(asObject(obj["activityPatterns"])),
	}
	return res
}

func decodeActivityPatterns(obj map[string]interface{}) model.ActivityPatterns {
	return model.ActivityPatterns{
		IsRegularUser:     asBool(obj["isRegularUser"]),
		AverageFrequency:  nonNeg(asFloat(obj["averageFrequency"])),
		VolumeConsistency: clampUnit(asFloat(obj["volumeConsistency"])),
		ChainDiversity:    clampUnit(asFloat(obj["chainDiversity"])),
		RecentActivity:    asBool(obj["recentActivity"]),
	}
}

func decodeDistribution(raw interface{}, normalizeChains bool) map[string]model.DistributionEntry {
	out := map[string]model.DistributionEntry{}
	obj := asObject(raw)
	for label, v := range obj {
		entry := asObject(v)
		key := label
		if normalizeChains {
			key = types.NormalizeChain(label)
		}
		out[key] = model.DistributionEntry{
			Count:      asNonNegInt(entry["count"]),
			Volume:     asDecimal(entry["volume"]),
			Percentage: clampPercent(asFloat(entry["percentage"])),
		}
	}
	return out
}

func decodeRoutePatterns(raw interface{}) []model.RoutePattern {
	arr := asArray(raw)
	out := make([]model.RoutePattern, 0, len(arr))
	for _, v := range arr {
		obj := asObject(v)
		out = append(out, model.RoutePattern{
			FromChain: types.NormalizeChain(asString(obj["fromChain"], "")),
			ToChain:   types.NormalizeChain(asString(obj["toChain"], "")),
			Count:     asNonNegInt(obj["count"]),
			Volume:    asDecimal(obj["volume"]),
			AvgFee:    asDecimal(obj["avgFee"]),
		})
	}
	return out
}

func decodeMonthlyActivity(raw interface{}) []model.MonthlyActivity {
	arr := asArray(raw)
	out := make([]model.MonthlyActivity, 0, len(arr))
	for _, v := range arr {
		obj := asObject(v)
		out = append(out, model.MonthlyActivity{
			Month:        asString(obj["month"], ""),
			Count:        asNonNegInt(obj["count"]),
			Volume:       asDecimal(obj["volume"]),
			UniqueChains: asNonNegInt(obj["uniqueChains"]),
		})
	}
	// Keep the sequence ordered even if the upstream shuffles it.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func decodeLPActivity(obj map[string]interface{}) model.LPActivity {
	total := asNonNegInt(obj["totalPositions"])
	active := asNonNegInt(obj["activePositions"])
	if active > total {
		active = total
	}
	return model.LPActivity{
		TotalPositions:          total,
		ActivePositions:         active,
		TotalLiquidityProvided:  asDecimal(obj["totalLiquidityProvided"]),
		TotalRewardsEarned:      asDecimal(obj["totalRewardsEarned"]),
		AveragePositionDuration: nonNeg(asFloat(obj["averagePositionDuration"])),
		PoolDistribution:        decodePoolDistribution(obj["poolDistribution"]),
		PerformanceMetrics:      decodePerformanceMetrics(asObject(obj["performanceMetrics"])),
	}
}

func decodePoolDistribution(raw interface{}) map[string]model.PoolPosition {
	out := map[string]model.PoolPosition{}
	for label, v := range asObject(raw) {
		entry := asObject(v)
		out[label] = model.PoolPosition{
			LiquidityProvided: asDecimal(entry["liquidityProvided"]),
			Duration:          nonNeg(asFloat(entry["duration"])),
			RewardsEarned:     asDecimal(entry["rewardsEarned"]),
			APR:               nonNeg(asFloat(entry["apr"])),
		}
	}
	return out
}

func decodePerformanceMetrics(obj map[string]interface{}) model.LPPerformanceMetrics {
	return model.LPPerformanceMetrics{
		TotalTimeProviding:   nonNeg(asFloat(obj["totalTimeProviding"])),
		AveragePositionSize:  asDecimal(obj["averagePositionSize"]),
		BestPerformingPool:   asString(obj["bestPerformingPool"], ""),
		TotalImpermanentLoss: asDecimal(obj["totalImpermanentLoss"]),
		NetProfitLoss:        asDecimal(obj["netProfitLoss"]),
	}
}

func decodeCrossChainRoutes(raw interface{}) []model.CrossChainRoute {
	arr := asArray(raw)
	out := make([]model.CrossChainRoute, 0, len(arr))
	for _, v := range arr {
		obj := asObject(v)
		out = append(out, model.CrossChainRoute{
			Route:           asString(obj["route"], ""),
			Frequency:       asNonNegInt(obj["frequency"]),
			TotalVolume:     asDecimal(obj["totalVolume"]),
			AverageAmount:   asDecimal(obj["averageAmount"]),
			PreferredTokens: asStringSlice(obj["preferredTokens"]),
		})
	}
	return out
}

func decodeEligibilityMetrics(obj map[string]interface{}) model.EligibilityMetrics {
	multiplier := asFloat(obj["lpBonusMultiplier"])
	if multiplier < 1 {
		multiplier = 1
	}
	return model.EligibilityMetrics{
		BridgeScore:       clampScore(asInt(obj["bridgeScore"])),
		LPScore:           clampScore(asInt(obj["lpScore"])),
		CombinedScore:     clampScore(asInt(obj["combinedScore"])),
		Tier:              asTier(obj["tier"]),
		PercentileRank:    clampScore(asInt(obj["percentileRank"])),
		LPBonusMultiplier: multiplier,
	}
}

func decodeTimeline(raw interface{}) []model.TimelineEvent {
	arr := asArray(raw)
	out := make([]model.TimelineEvent, 0, len(arr))
	for _, v := range arr {
		obj := asObject(v)
		eventType := model.TimelineEventType(asString(obj["type"], string(model.EventBridge)))
		if !model.ValidTimelineEventType(eventType) {
			logrus.WithField("type", eventType).Debug("Unknown timeline event type, defaulting to bridge")
			eventType = model.EventBridge
		}
		out = append(out, model.TimelineEvent{
			Timestamp: asEpoch(obj["timestamp"]),
			Type:      eventType,
			Amount:    asDecimal(obj["amount"]),
			Token:     asString(obj["token"], ""),
			Chain:     types.NormalizeChain(asString(obj["chain"], "")),
			Details:   asString(obj["details"], ""),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func asTier(v interface{}) model.Tier {
	t := model.Tier(asString(v, string(model.TierNone)))
	if !model.ValidTier(t) {
		return model.TierNone
	}
	return t
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func clampPercent(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func nonNeg(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func asDecimal(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case string:
		if d, err := decimal.NewFromString(x); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case decimal.Decimal:
		return x
	}
	return decimal.Zero
}

func asFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		if d, err := decimal.NewFromString(x); err == nil {
			f, _ := d.Float64()
			return f
		}
	}
	return 0
}

func asInt(v interface{}) int {
	switch x := v.(type) {
	case float64:
		// int64 overflow on conversion is implementation-defined.
		if x >= math.MaxInt64 || x < math.MinInt64 {
			return 0
		}
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case string:
		if d, err := decimal.NewFromString(x); err == nil {
			return int(d.IntPart())
		}
	}
	return 0
}

func asNonNegInt(v interface{}) int {
	n := asInt(v)
	if n < 0 {
		return 0
	}
	return n
}

func asEpoch(v interface{}) int64 {
	switch x := v.(type) {
	case float64:
		if x < 0 || x >= math.MaxInt64 {
			return 0
		}
		return int64(x)
	case int64:
		if x < 0 {
			return 0
		}
		return x
	case int:
		if x < 0 {
			return 0
		}
		return int64(x)
	case string:
		if d, err := decimal.NewFromString(x); err == nil && d.Sign() >= 0 {
			return d.IntPart()
		}
	}
	return 0
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asObject(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func asArray(v interface{}) []interface{} {
	if a, ok := v.([]interface{}); ok {
		return a
	}
	return nil
}

func asStringSlice(v interface{}) []string {
	arr := asArray(v)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
