// Package recommend derives prioritized, actionable recommendations from
// merged bridge metrics and the historical benchmark. Each immediate-action
// rule is an independent check; evaluation order only affects the final list
// ordering, which groups by descending priority.
package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-eligibility-ea/internal/benchmark"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
	"github.com/yourorg/bridge-eligibility-ea/internal/scoring"
)

// Volume thresholds for user-type bucketing.
var (
	whaleVolume   = decimal.NewFromInt(500_000)
	regularVolume = decimal.NewFromInt(15_000)
	lowVolume     = decimal.NewFromInt(10_000)
)

// Recommend produces the full recommendation block from merged metrics and
// the benchmark output.
func Recommend(m benchmark.Metrics, cmp *model.HistoricalComparisonResult) *model.BridgeRecommendation {
	actions := immediateActions(m, cmp)
	return &model.BridgeRecommendation{
		ImmediateActions:        actions,
		LongTermStrategy:        longTermStrategy(m),
		ProtocolRecommendations: protocolTargets(m),
		RiskConsiderations:      risks(m),
		CostBenefitAnalysis:     costBenefit(actions, cmp),
		PersonalizedInsights:    insights(m, cmp),
	}
}

func immediateActions(m benchmark.Metrics, cmp *model.HistoricalComparisonResult) []model.ImmediateAction {
	actions := []model.ImmediateAction{}

	if m.AvgTxPerMonth < 2 {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityHigh,
			Action:          "increase_bridge_frequency",
			Description:     "Bridge at least twice per month to establish a regular activity pattern",
			EstimatedImpact: 15,
			EstimatedCost:   decimal.NewFromInt(200),
			Timeframe:       "2 weeks",
			Difficulty:      model.DifficultyEasy,
		})
	}

	if m.LPPositions == 0 {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityHigh,
			Action:          "start_liquidity_provision",
			Description:     "Open a first liquidity position; LP activity carries its own score and bonus multiplier",
			EstimatedImpact: 20,
			EstimatedCost:   decimal.NewFromInt(1000),
			Timeframe:       "1 week",
			Difficulty:      model.DifficultyMedium,
		})
	}

	if m.UniqueChains < 4 {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityMedium,
			Action:          "diversify_chains",
			Description:     fmt.Sprintf("Bridge to new networks; activity spans %d chains, diversity is scored against 8", m.UniqueChains),
			EstimatedImpact: 10,
			EstimatedCost:   decimal.NewFromInt(150),
			Timeframe:       "1 month",
			Difficulty:      model.DifficultyEasy,
		})
	}

	if m.BridgeVolume.LessThan(lowVolume) {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityMedium,
			Action:          "increase_bridge_volume",
			Description:     "Grow cumulative bridge volume past $10,000; volume carries the largest scoring weight",
			EstimatedImpact: 12,
			EstimatedCost:   decimal.NewFromInt(5000),
			Timeframe:       "1 month",
			Difficulty:      model.DifficultyMedium,
		})
	}

	if m.LPPositions > 0 && m.LPDurationDays < 30 {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityLow,
			Action:          "extend_lp_duration",
			Description:     "Keep liquidity positions open past the 30-day multiplier breakpoint",
			EstimatedImpact: 8,
			EstimatedCost:   decimal.Zero,
			Timeframe:       "3 months",
			Difficulty:      model.DifficultyEasy,
		})
	}

	if cmp != nil && cmp.OverallPercentile.Combined >= 90 {
		actions = append(actions, model.ImmediateAction{
			Priority:        model.PriorityLow,
			Action:          "maintain_activity",
			Description:     "Standing is already strong; keep the current cadence through any snapshot window",
			EstimatedImpact: 5,
			EstimatedCost:   decimal.NewFromInt(100),
			Timeframe:       "ongoing",
			Difficulty:      model.DifficultyEasy,
		})
	}

	// Group by descending priority; rule order is preserved within a group.
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority.Rank() < actions[j].Priority.Rank()
	})
	return actions
}

func longTermStrategy(m benchmark.Metrics) model.LongTermStrategy {
	current := scoring.OverallTier(m.CombinedScore)
	target := scoring.NextTier(current)
	gap := scoring.TierThreshold(target) - m.CombinedScore
	if gap < 0 {
		gap = 0
	}

	path := []model.Milestone{
		{Step: 1, Description: "Establish a twice-monthly bridging cadence", Target: "2+ transactions per month"},
		{Step: 2, Description: "Spread activity across additional networks", Target: "5+ unique chains"},
		{Step: 3, Description: "Provide liquidity and hold past multiplier breakpoints", Target: "90+ days position duration"},
		{Step: 4, Description: fmt.Sprintf("Close the remaining score gap to %s", target), Target: fmt.Sprintf("combined score %d", scoring.TierThreshold(target))},
	}

	return model.LongTermStrategy{
		TargetTier:      target,
		CurrentGap:      gap,
		RecommendedPath: path,
	}
}

func protocolTargets(m benchmark.Metrics) []model.ProtocolTargets {
	// Targets double the current figure, floored at the silver-gate volume.
	orbiterTarget := m.BridgeVolume.Mul(decimal.NewFromInt(2))
	if orbiterTarget.LessThan(lowVolume) {
		orbiterTarget = lowVolume
	}
	hopTarget := m.LPVolume.Mul(decimal.NewFromInt(2))
	if hopTarget.LessThan(lowVolume) {
		hopTarget = lowVolume
	}

	return []model.ProtocolTargets{
		{
			Protocol:          "orbiter",
			TargetVolume:      orbiterTarget,
			TargetFrequency:   "4+ transfers per month",
			RecommendedRoutes: []string{"ethereum->arbitrum", "ethereum->zksync", "arbitrum->base"},
		},
		{
			Protocol:          "hop",
			TargetVolume:      hopTarget,
			TargetFrequency:   "2+ transfers per month",
			RecommendedRoutes: []string{"ethereum->optimism", "optimism->arbitrum"},
			RecommendedPools:  []string{"ETH", "USDC"},
		},
	}
}

func risks(m benchmark.Metrics) []model.RiskConsideration {
	out := []model.RiskConsideration{
		{
			Type:        "sybil_detection",
			Severity:    "high",
			Description: "Sudden bursts of formulaic activity are a common sybil filter signal",
			Mitigation:  "Spread new activity over weeks with varied amounts and routes",
		},
		{
			Type:        "gas_costs",
			Severity:    "medium",
			Description: "Bridging and LP operations carry gas and bridge fees that reduce net benefit",
			Mitigation:  "Batch operations and prefer low-fee networks where possible",
		},
	}
	if m.LPPositions == 0 || m.LPVolume.Sign() > 0 {
		out = append(out, model.RiskConsideration{
			Type:        "impermanent_loss",
			Severity:    "medium",
			Description: "Liquidity positions in volatile pairs can lose value relative to holding",
			Mitigation:  "Prefer stablecoin or correlated-asset pools for eligibility positions",
		})
	}
	out = append(out, model.RiskConsideration{
		Type:        "smart_contract",
		Severity:    "low",
		Description: "Bridge and pool contracts carry protocol risk",
		Mitigation:  "Use audited, long-lived protocols and avoid unaudited forks",
	})
	return out
}

func costBenefit(actions []model.ImmediateAction, cmp *model.HistoricalComparisonResult) model.CostBenefitAnalysis {
	totalCost := decimal.Zero
	for _, a := range actions {
		totalCost = totalCost.Add(a.EstimatedCost)
	}

	percentile := 0
	if cmp != nil {
		percentile = cmp.OverallPercentile.Combined
	}

	scoreImprovement := 100 - percentile
	if scoreImprovement < 10 {
		scoreImprovement = 10
	}

	percentileImprovement := int(math.Round(float64(scoreImprovement) * 0.8))
	if remaining := 100 - percentile; percentileImprovement > remaining {
		percentileImprovement = remaining
	}

	roi := 0.0
	if totalCost.Sign() > 0 {
		cost, _ := totalCost.Float64()
		roi = math.Round(float64(scoreImprovement)/cost*100*10) / 10
	}

	return model.CostBenefitAnalysis{
		EstimatedTotalCost:             totalCost,
		EstimatedScoreImprovement:      scoreImprovement,
		EstimatedPercentileImprovement: percentileImprovement,
		ROI:                            roi,
		BreakEvenAirdropValue:          totalCost.Mul(decimal.NewFromInt(4)),
	}
}

func insights(m benchmark.Metrics, cmp *model.HistoricalComparisonResult) model.PersonalizedInsights {
	userType := classifyUser(m)

	strengths := []string{}
	weaknesses := []string{}
	opportunity := 50
	advantage := "consistent multi-protocol activity"
	if cmp != nil {
		strengths = cmp.BenchmarkInsights.StrongestMetrics
		weaknesses = cmp.BenchmarkInsights.WeakestMetrics
		opportunity = cmp.BenchmarkInsights.ImprovementPotential
		if len(strengths) > 0 {
			advantage = fmt.Sprintf("above-average %s relative to the reference population", strengths[0])
		}
	}

	return model.PersonalizedInsights{
		UserType:             userType,
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		OpportunityScore:     opportunity,
		CompetitiveAdvantage: advantage,
	}
}

func classifyUser(m benchmark.Metrics) model.UserType {
	switch {
	case m.TotalVolume().GreaterThanOrEqual(whaleVolume):
		return model.UserWhale
	case m.TotalVolume().GreaterThanOrEqual(regularVolume) && m.TotalTransactions >= 10:
		return model.UserRegular
	case m.TotalTransactions > 0:
		return model.UserCasual
	}
	return model.UserNew
}
