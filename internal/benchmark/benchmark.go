// Package benchmark compares merged bridge metrics against fixed historical
// airdrop criteria snapshots. It performs no I/O and is fully deterministic:
// every output is a pure function of its input and the constants below.
package benchmark

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/yourorg/bridge-eligibility-ea/internal/model"
)

// Metrics is the merged, already-computed metric set the comparator consumes.
type Metrics struct {
	CombinedScore     int
	BridgeVolume      decimal.Decimal
	LPVolume          decimal.Decimal
	TotalTransactions int
	UniqueChains      int
	AvgTxPerMonth     float64
	LPDurationDays    float64
	LPPositions       int
}

// TotalVolume is bridge volume plus LP volume.
func (m Metrics) TotalVolume() decimal.Decimal {
	return m.BridgeVolume.Add(m.LPVolume)
}

// Historical airdrop contexts with hard required scores.
var airdropContexts = []struct {
	name     string
	required int
}{
	{"arbitrum", 60},
	{"optimism", 70},
	{"hop", 50},
}

// The likelihood context has no hard cutoff.
const (
	likelihoodContext       = "layerzero"
	likelihoodRequiredScore = 60
	likelihoodGain          = 1.2
)

// Fixed reference ceilings for percentile derivation.
var (
	volumeCeiling   = decimal.NewFromInt(500_000)
	lpVolumeCeiling = decimal.NewFromInt(250_000)
)

const chainCeiling = 8.0

// Assumed average-user constants for comparative multipliers.
var avgUserVolume = decimal.NewFromInt(15_000)

const (
	avgUserTransactions = 10.0
	avgUserChains       = 2.0
)

// Assumed eligible-user ceilings for the vsEligibleUsers percentiles.
var eligibleVolumeCeiling = decimal.NewFromInt(100_000)

const (
	eligibleFrequencyCeiling = 50.0
	eligibleChainCeiling     = 5.0
)

// Compare benchmarks the merged metrics against every historical context and
// derives percentiles, comparative multipliers and insights.
func Compare(m Metrics) *model.HistoricalComparisonResult {
	percentiles := overallPercentile(m)

	airdrops := make(map[string]model.AirdropBenchmark, len(airdropContexts))
	for _, ctx := range airdropContexts {
		airdrops[ctx.name] = model.AirdropBenchmark{
			UserScore:       m.CombinedScore,
			RequiredScore:   ctx.required,
			Eligible:        m.CombinedScore >= ctx.required,
			PercentileRank:  percentiles.Combined,
			MissingCriteria: missingCriteria(m, ctx.required),
		}
	}

	strengths, improvements := areas(percentiles)

	likelihoods := map[string]model.LikelihoodBenchmark{
		likelihoodContext: {
			UserScore:              m.CombinedScore,
			EstimatedRequiredScore: likelihoodRequiredScore,
			EligibilityLikelihood:  capPercent(int(math.Round(float64(m.CombinedScore) * likelihoodGain))),
			PercentileRank:         percentiles.Combined,
			StrengthAreas:          strengths,
			ImprovementAreas:       improvements,
		},
	}

	return &model.HistoricalComparisonResult{
		Airdrops:            airdrops,
		Likelihoods:         likelihoods,
		OverallPercentile:   percentiles,
		ComparativeAnalysis: comparative(m),
		BenchmarkInsights:   insights(percentiles),
	}
}

// ceilingPercentile maps value/ceiling to [0,100].
func ceilingPercentile(value, ceiling decimal.Decimal) int {
	if ceiling.Sign() <= 0 || value.Sign() <= 0 {
		return 0
	}
	r, _ := value.Div(ceiling).Float64()
	return capPercent(int(math.Round(r * 100)))
}

func ratioPercentile(value, ceiling float64) int {
	if ceiling <= 0 || value <= 0 {
		return 0
	}
	return capPercent(int(math.Round(value / ceiling * 100)))
}

func overallPercentile(m Metrics) model.OverallPercentile {
	p := model.OverallPercentile{
		BridgeActivity:      ceilingPercentile(m.BridgeVolume, volumeCeiling),
		LPActivity:          ceilingPercentile(m.LPVolume, lpVolumeCeiling),
		CrossChainDiversity: ratioPercentile(float64(m.UniqueChains), chainCeiling),
		VolumeRanking:       ceilingPercentile(m.TotalVolume(), volumeCeiling),
	}
	p.Combined = capPercent(int(math.Round(
		float64(p.BridgeActivity+p.LPActivity+p.CrossChainDiversity+p.VolumeRanking) / 4)))
	return p
}

func missingCriteria(m Metrics, required int) []string {
	if m.CombinedScore >= required {
		return []string{}
	}
	missing := []string{
		fmt.Sprintf("combined score %d below required %d", m.CombinedScore, required),
	}
	if m.BridgeVolume.LessThan(decimal.NewFromInt(10_000)) {
		missing = append(missing, "bridge volume below $10,000")
	}
	if m.TotalTransactions < 25 {
		missing = append(missing, "fewer than 25 bridge transactions")
	}
	if m.UniqueChains < 3 {
		missing = append(missing, "activity on fewer than 3 chains")
	}
	if m.LPPositions == 0 {
		missing = append(missing, "no liquidity positions")
	}
	return missing
}

func comparative(m Metrics) model.ComparativeAnalysis {
	volRatio, _ := m.TotalVolume().Div(avgUserVolume).Float64()
	return model.ComparativeAnalysis{
		VsAverageUser: model.VsAverageUser{
			VolumeMultiplier:      round1(volRatio),
			TransactionMultiplier: round1(float64(m.TotalTransactions) / avgUserTransactions),
			ChainMultiplier:       round1(float64(m.UniqueChains) / avgUserChains),
		},
		VsEligibleUsers: model.VsEligibleUsers{
			VolumePercentile:    ceilingPercentile(m.TotalVolume(), eligibleVolumeCeiling),
			FrequencyPercentile: ratioPercentile(float64(m.TotalTransactions), eligibleFrequencyCeiling),
			DiversityPercentile: ratioPercentile(float64(m.UniqueChains), eligibleChainCeiling),
		},
	}
}

// namedPercentile pairs a metric label with its percentile for ranking.
type namedPercentile struct {
	name  string
	value int
}

func rankedPercentiles(p model.OverallPercentile) []namedPercentile {
	ranked := []namedPercentile{
		{"bridge activity", p.BridgeActivity},
		{"lp activity", p.LPActivity},
		{"cross-chain diversity", p.CrossChainDiversity},
		{"volume ranking", p.VolumeRanking},
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value > ranked[j].value })
	return ranked
}

// areas derives strength and improvement labels from the percentile spread.
func areas(p model.OverallPercentile) (strengths, improvements []string) {
	strengths = []string{}
	improvements = []string{}
	for _, np := range rankedPercentiles(p) {
		if np.value >= 70 {
			strengths = append(strengths, np.name)
		} else if np.value < 40 {
			improvements = append(improvements, np.name)
		}
	}
	return strengths, improvements
}

func insights(p model.OverallPercentile) model.BenchmarkInsights {
	ranked := rankedPercentiles(p)
	strongest := []string{ranked[0].name, ranked[1].name}
	weakest := []string{ranked[len(ranked)-1].name, ranked[len(ranked)-2].name}

	potential := capPercent(100 - p.Combined)
	return model.BenchmarkInsights{
		StrongestMetrics:     strongest,
		WeakestMetrics:       weakest,
		ImprovementPotential: potential,
		TimeToImprove:        int(math.Round(float64(potential) * 1.5)),
	}
}

func capPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
