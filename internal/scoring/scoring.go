// Package scoring normalizes raw protocol metrics into 0-100 eligibility
// scores and discrete tiers. Every function here is a deterministic table
// lookup or weighted sum over fixed reference constants; nothing estimates.
package scoring

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

// Reference ceilings: a metric at or above its ceiling earns a full sub-score.
var (
	orbiterVolumeRef = decimal.NewFromInt(100_000)
	hopBridgeVolRef  = decimal.NewFromInt(500_000)
	hopLPVolumeRef   = decimal.NewFromInt(250_000)
)

const (
	orbiterDiversityRef  = 8.0
	orbiterFrequencyGain = 10.0 // tx/day multiplier before capping
	hopLPDurationRef     = 180.0
	hopDiversityRef      = 10.0 // uniqueChains + uniqueTokens
	hopFrequencyRef      = 100.0
	recencyWindow        = 30 * 24 * time.Hour
)

// Sub-score weights for the Orbiter-style protocol.
const (
	orbiterVolumeWeight    = 0.40
	orbiterFrequencyWeight = 0.25
	orbiterDiversityWeight = 0.20
	orbiterRecencyWeight   = 0.15
)

// Sub-score weights for the Hop-style combined score.
const (
	hopBridgeVolumeWeight    = 0.30
	hopBridgeFrequencyWeight = 0.20
	hopLPVolumeWeight        = 0.25
	hopLPDurationWeight      = 0.15
	hopDiversityWeight       = 0.10
)

// cappedRatio maps value/reference to [0,100].
func cappedRatio(value, reference float64) float64 {
	if reference <= 0 || value <= 0 {
		return 0
	}
	r := value / reference
	if r > 1 {
		r = 1
	}
	return r * 100
}

func cappedDecimalRatio(value, reference decimal.Decimal) float64 {
	if reference.Sign() <= 0 || value.Sign() <= 0 {
		return 0
	}
	r, _ := value.Div(reference).Float64()
	if r > 1 {
		r = 1
	}
	return r * 100
}

// txPerDay derives average daily transaction frequency from the observed
// activity span. A single-day history counts as one day.
func txPerDay(totalTx int, firstMillis, lastMillis int64) float64 {
	if totalTx <= 0 {
		return 0
	}
	spanDays := float64(lastMillis-firstMillis) / float64(24*time.Hour/time.Millisecond)
	if spanDays < 1 {
		spanDays = 1
	}
	return float64(totalTx) / spanDays
}

// OrbiterScore computes the Orbiter-style weighted eligibility score:
// volume 40%, frequency 25%, diversity 20%, recency 15%.
func OrbiterScore(res *model.ProtocolActivityResult, now time.Time) int {
	volumeScore := cappedDecimalRatio(res.TotalVolume, orbiterVolumeRef)

	perDay := txPerDay(res.TotalTransactions, res.FirstTransaction, res.LastTransaction)
	frequencyScore := cappedRatio(perDay*orbiterFrequencyGain, 1)

	diversityScore := cappedRatio(float64(res.UniqueChains), orbiterDiversityRef)
	recencyScore := recency(res.LastTransaction, now)

	score := orbiterVolumeWeight*volumeScore +
		orbiterFrequencyWeight*frequencyScore +
		orbiterDiversityWeight*diversityScore +
		orbiterRecencyWeight*recencyScore

	return clampScore(int(math.Round(score)))
}

// recency is binary: full marks inside the 30-day window, half outside.
// An address with no activity at all scores zero.
func recency(lastMillis int64, now time.Time) float64 {
	if lastMillis <= 0 {
		return 0
	}
	last := time.UnixMilli(lastMillis)
	if now.Sub(last) <= recencyWindow {
		return 100
	}
	return 50
}

// orbiterGate is one AND-gated tier threshold: all three metrics must clear.
type orbiterGate struct {
	tier    model.Tier
	volume  decimal.Decimal
	txCount int
	chains  int
}

// Thresholds escalate roughly 10x per tier.
var orbiterGates = []orbiterGate{
	{model.TierPlatinum, decimal.NewFromInt(1_000_000), 500, 8},
	{model.TierGold, decimal.NewFromInt(100_000), 100, 5},
	{model.TierSilver, decimal.NewFromInt(10_000), 25, 3},
	{model.TierBronze, decimal.NewFromInt(1_000), 5, 2},
}

// OrbiterTier applies AND-gated tiering: a tier is reached only when volume,
// transaction count and chain count each individually clear its threshold.
func OrbiterTier(volume decimal.Decimal, txCount, uniqueChains int) model.Tier {
	for _, g := range orbiterGates {
		if volume.GreaterThanOrEqual(g.volume) && txCount >= g.txCount && uniqueChains >= g.chains {
			return g.tier
		}
	}
	return model.TierNone
}

// HopScores computes the Hop-style sub-scores and the weighted combined
// score: bridge volume 30%, bridge frequency 20%, LP volume 25%, LP duration
// 15%, diversity 10%.
func HopScores(bridge *model.ProtocolActivityResult, lp *model.LPActivity) (bridgeScore, lpScore, combined int) {
	bridgeVolumeScore := cappedDecimalRatio(bridge.TotalVolume, hopBridgeVolRef)
	bridgeFrequencyScore := cappedRatio(float64(bridge.TotalTransactions), hopFrequencyRef)
	lpVolumeScore := cappedDecimalRatio(lp.TotalLiquidityProvided, hopLPVolumeRef)
	lpDurationScore := cappedRatio(lp.AveragePositionDuration, hopLPDurationRef)
	diversityScore := cappedRatio(float64(bridge.UniqueChains+bridge.UniqueTokens), hopDiversityRef)

	combinedScore := hopBridgeVolumeWeight*bridgeVolumeScore +
		hopBridgeFrequencyWeight*bridgeFrequencyScore +
		hopLPVolumeWeight*lpVolumeScore +
		hopLPDurationWeight*lpDurationScore +
		hopDiversityWeight*diversityScore

	bridgeScore = clampScore(int(math.Round(
		(hopBridgeVolumeWeight*bridgeVolumeScore + hopBridgeFrequencyWeight*bridgeFrequencyScore) /
			(hopBridgeVolumeWeight + hopBridgeFrequencyWeight))))
	lpScore = clampScore(int(math.Round(
		(hopLPVolumeWeight*lpVolumeScore + hopLPDurationWeight*lpDurationScore) /
			(hopLPVolumeWeight + hopLPDurationWeight))))
	combined = clampScore(int(math.Round(combinedScore)))
	return bridgeScore, lpScore, combined
}

// pointBand awards points when a metric clears a threshold; only the highest
// band met applies.
type pointBand struct {
	threshold decimal.Decimal
	points    int
}

var (
	bridgeVolumeBands = []pointBand{ // up to 30 pts
		{decimal.NewFromInt(500_000), 30},
		{decimal.NewFromInt(100_000), 25},
		{decimal.NewFromInt(50_000), 20},
		{decimal.NewFromInt(10_000), 12},
		{decimal.NewFromInt(1_000), 5},
	}
	lpLiquidityBands = []pointBand{ // up to 30 pts
		{decimal.NewFromInt(250_000), 30},
		{decimal.NewFromInt(50_000), 22},
		{decimal.NewFromInt(10_000), 14},
		{decimal.NewFromInt(1_000), 6},
	}
)

// Frequency and duration bands key off plain numbers.
type numericBand struct {
	threshold float64
	points    int
}

var (
	bridgeFrequencyBands = []numericBand{ // up to 20 pts
		{100, 20},
		{50, 15},
		{25, 10},
		{10, 6},
		{5, 3},
	}
	lpDurationBands = []numericBand{ // up to 20 pts
		{180, 20},
		{90, 15},
		{30, 8},
		{7, 3},
	}
)

func decimalBandPoints(value decimal.Decimal, bands []pointBand) int {
	for _, b := range bands {
		if value.GreaterThanOrEqual(b.threshold) {
			return b.points
		}
	}
	return 0
}

func numericBandPoints(value float64, bands []numericBand) int {
	for _, b := range bands {
		if value >= b.threshold {
			return b.points
		}
	}
	return 0
}

// HopPoints sums the additive tier points: bridge volume up to 30, bridge
// frequency up to 20, LP liquidity up to 30, LP duration up to 20.
func HopPoints(bridge *model.ProtocolActivityResult, lp *model.LPActivity) int {
	return decimalBandPoints(bridge.TotalVolume, bridgeVolumeBands) +
		numericBandPoints(float64(bridge.TotalTransactions), bridgeFrequencyBands) +
		decimalBandPoints(lp.TotalLiquidityProvided, lpLiquidityBands) +
		numericBandPoints(lp.AveragePositionDuration, lpDurationBands)
}

// HopTier maps summed points to a tier via fixed combined thresholds.
func HopTier(points int) model.Tier {
	switch {
	case points >= 95:
		return model.TierPlatinum
	case points >= 80:
		return model.TierGold
	case points >= 60:
		return model.TierSilver
	case points >= 40:
		return model.TierBronze
	}
	return model.TierNone
}

// LP bonus multipliers: only the highest breakpoint met applies per bucket.
var lpDurationMultipliers = []struct {
	days       float64
	multiplier float64
}{
	{180, 2.0},
	{90, 1.75},
	{30, 1.5},
	{7, 1.25},
}

var lpSizeMultipliers = []struct {
	size       decimal.Decimal
	multiplier float64
}{
	{decimal.NewFromInt(250_000), 1.5},
	{decimal.NewFromInt(50_000), 1.35},
	{decimal.NewFromInt(10_000), 1.2},
	{decimal.NewFromInt(1_000), 1.1},
}

// LPBonusMultiplier is the product of a duration-bucket multiplier and a
// size-bucket multiplier. Breakpoints are not cumulative.
func LPBonusMultiplier(durationDays float64, liquidity decimal.Decimal) float64 {
	duration := 1.0
	for _, b := range lpDurationMultipliers {
		if durationDays >= b.days {
			duration = b.multiplier
			break
		}
	}
	size := 1.0
	for _, b := range lpSizeMultipliers {
		if liquidity.GreaterThanOrEqual(b.size) {
			size = b.multiplier
			break
		}
	}
	return duration * size
}

// OverallTier derives the combined tier from a combined score. The
// breakpoints differ deliberately from the per-protocol tiering rules.
func OverallTier(score int) model.Tier {
	switch {
	case score >= 90:
		return model.TierPlatinum
	case score >= 75:
		return model.TierGold
	case score >= 60:
		return model.TierSilver
	case score >= 40:
		return model.TierBronze
	}
	return model.TierNone
}

// TierThreshold returns the minimum combined score for a tier under the
// overall breakpoints.
func TierThreshold(t model.Tier) int {
	switch t {
	case model.TierPlatinum:
		return 90
	case model.TierGold:
		return 75
	case model.TierSilver:
		return 60
	case model.TierBronze:
		return 40
	}
	return 0
}

// NextTier returns the tier above t, or platinum when already there.
func NextTier(t model.Tier) model.Tier {
	switch t {
	case model.TierNone:
		return model.TierBronze
	case model.TierBronze:
		return model.TierSilver
	case model.TierSilver:
		return model.TierGold
	default:
		return model.TierPlatinum
	}
}

// PercentileRank estimates a protocol-level percentile from the score against
// the assumed reference population. Not an empirical percentile.
func PercentileRank(score int) int {
	return clampScore(int(math.Round(float64(score) * 1.1)))
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
