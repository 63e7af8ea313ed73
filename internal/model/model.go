// Package model defines the core data structures for the bridge-eligibility-ea.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Version is the analysis schema version reported in metadata.
const Version = "1.0.0"

// Tier is an ordinal eligibility bucket derived from a numeric score.
type Tier string

// Eligibility tiers, lowest to highest.
const (
	TierNone     Tier = "none"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// ValidTier reports whether t is one of the enumerated tier values.
func ValidTier(t Tier) bool {
	switch t {
	case TierNone, TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

var tierRank = map[Tier]int{
	TierNone:     0,
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// Rank returns the ordinal position of the tier (none=0 .. platinum=4).
func (t Tier) Rank() int {
	return tierRank[t]
}

// DistributionEntry describes one label's share of a chain or token distribution.
type DistributionEntry struct {
	Count      int             `json:"count"`
	Volume     decimal.Decimal `json:"volume"`
	Percentage float64         `json:"percentage"`
}

// RoutePattern is an observed bridging corridor between two chains.
type RoutePattern struct {
	FromChain string          `json:"fromChain"`
	ToChain   string          `json:"toChain"`
	Count     int             `json:"count"`
	Volume    decimal.Decimal `json:"volume"`
	AvgFee    decimal.Decimal `json:"avgFee"`
}

// MonthlyActivity is one month of bridging activity.
type MonthlyActivity struct {
	Month        string          `json:"month"`
	Count        int             `json:"count"`
	Volume       decimal.Decimal `json:"volume"`
	UniqueChains int             `json:"uniqueChains"`
}

// ActivityPatterns summarizes behavioral traits extracted from raw activity.
type ActivityPatterns struct {
	IsRegularUser     bool    `json:"isRegularUser"`
	AverageFrequency  float64 `json:"averageFrequency"`
	VolumeConsistency float64 `json:"volumeConsistency"`
	ChainDiversity    float64 `json:"chainDiversity"`
	RecentActivity    bool    `json:"recentActivity"`
}

// ProtocolActivityResult is the canonical per-protocol bridging activity
// record. Volumes and fees are decimal values end to end; they are never run
// through binary floating point.
type ProtocolActivityResult struct {
	Address                string                       `json:"address"`
	TotalTransactions      int                          `json:"totalTransactions"`
	TotalVolume            decimal.Decimal              `json:"totalVolume"`
	TotalFees              decimal.Decimal              `json:"totalFees"`
	UniqueChains           int                          `json:"uniqueChains"`
	UniqueTokens           int                          `json:"uniqueTokens"`
	FirstTransaction       int64                        `json:"firstTransaction"`
	LastTransaction        int64                        `json:"lastTransaction"`
	AverageTransactionSize decimal.Decimal              `json:"averageTransactionSize"`
	ChainDistribution      map[string]DistributionEntry `json:"chainDistribution"`
	TokenDistribution      map[string]DistributionEntry `json:"tokenDistribution"`
	RoutePatterns          []RoutePattern               `json:"routePatterns"`
	MonthlyActivity        []MonthlyActivity            `json:"monthlyActivity"`
	EligibilityScore       int                          `json:"eligibilityScore"`
	Tier                   Tier                         `json:"tier"`
	PercentileRank         int                          `json:"percentileRank"`
	ActivityPatterns       ActivityPatterns             `json:"activityPatterns"`
}

// PoolPosition describes LP exposure to a single pool.
type PoolPosition struct {
	LiquidityProvided decimal.Decimal `json:"liquidityProvided"`
	Duration          float64         `json:"duration"`
	RewardsEarned     decimal.Decimal `json:"rewardsEarned"`
	APR               float64         `json:"apr"`
}

// LPPerformanceMetrics aggregates LP position performance.
type LPPerformanceMetrics struct {
	TotalTimeProviding   float64         `json:"totalTimeProviding"`
	AveragePositionSize  decimal.Decimal `json:"averagePositionSize"`
	BestPerformingPool   string          `json:"bestPerformingPool"`
	TotalImpermanentLoss decimal.Decimal `json:"totalImpermanentLoss"`
	NetProfitLoss        decimal.Decimal `json:"netProfitLoss"`
}

// LPActivity is the liquidity-provision half of a bridge+LP protocol result.
type LPActivity struct {
	TotalPositions          int                     `json:"totalPositions"`
	ActivePositions         int                     `json:"activePositions"`
	TotalLiquidityProvided  decimal.Decimal         `json:"totalLiquidityProvided"`
	TotalRewardsEarned      decimal.Decimal         `json:"totalRewardsEarned"`
	AveragePositionDuration float64                 `json:"averagePositionDuration"`
	PoolDistribution        map[string]PoolPosition `json:"poolDistribution"`
	PerformanceMetrics      LPPerformanceMetrics    `json:"performanceMetrics"`
}

// CrossChainRoute is an aggregated view of a user's preferred corridor.
type CrossChainRoute struct {
	Route           string          `json:"route"`
	Frequency       int             `json:"frequency"`
	TotalVolume     decimal.Decimal `json:"totalVolume"`
	AverageAmount   decimal.Decimal `json:"averageAmount"`
	PreferredTokens []string        `json:"preferredTokens"`
}

// EligibilityMetrics is the combined scoring block of a bridge+LP result.
type EligibilityMetrics struct {
	BridgeScore       int     `json:"bridgeScore"`
	LPScore           int     `json:"lpScore"`
	CombinedScore     int     `json:"combinedScore"`
	Tier              Tier    `json:"tier"`
	PercentileRank    int     `json:"percentileRank"`
	LPBonusMultiplier float64 `json:"lpBonusMultiplier"`
}

// TimelineEventType enumerates activity timeline entry kinds.
type TimelineEventType string

// Timeline event types.
const (
	EventBridge       TimelineEventType = "bridge"
	EventLPDeposit    TimelineEventType = "lp_deposit"
	EventLPWithdraw   TimelineEventType = "lp_withdraw"
	EventRewardsClaim TimelineEventType = "rewards_claim"
)

// ValidTimelineEventType reports whether t is a known event type.
func ValidTimelineEventType(t TimelineEventType) bool {
	switch t {
	case EventBridge, EventLPDeposit, EventLPWithdraw, EventRewardsClaim:
		return true
	}
	return false
}

// TimelineEvent is one entry in a protocol activity timeline.
type TimelineEvent struct {
	Timestamp int64             `json:"timestamp"`
	Type      TimelineEventType `json:"type"`
	Amount    decimal.Decimal   `json:"amount"`
	Token     string            `json:"token"`
	Chain     string            `json:"chain"`
	Details   string            `json:"details,omitempty"`
}

// BridgeAndLPActivityResult is the richer protocol variant that tracks
// liquidity provision alongside bridging.
type BridgeAndLPActivityResult struct {
	BridgeActivity     ProtocolActivityResult `json:"bridgeActivity"`
	LPActivity         LPActivity             `json:"lpActivity"`
	CrossChainRoutes   []CrossChainRoute      `json:"crossChainRoutes"`
	EligibilityMetrics EligibilityMetrics     `json:"eligibilityMetrics"`
	ActivityTimeline   []TimelineEvent        `json:"activityTimeline"`
}

// AirdropBenchmark compares the user against one historical airdrop context
// with a hard required score.
type AirdropBenchmark struct {
	UserScore       int      `json:"userScore"`
	RequiredScore   int      `json:"requiredScore"`
	Eligible        bool     `json:"eligible"`
	PercentileRank  int      `json:"percentileRank"`
	MissingCriteria []string `json:"missingCriteria"`
}

// LikelihoodBenchmark compares against a context with no hard cutoff,
// expressing an estimated likelihood instead.
type LikelihoodBenchmark struct {
	UserScore              int      `json:"userScore"`
	EstimatedRequiredScore int      `json:"estimatedRequiredScore"`
	EligibilityLikelihood  int      `json:"eligibilityLikelihood"`
	PercentileRank         int      `json:"percentileRank"`
	StrengthAreas          []string `json:"strengthAreas"`
	ImprovementAreas       []string `json:"improvementAreas"`
}

// OverallPercentile ranks the user's standing against fixed reference ceilings.
type OverallPercentile struct {
	BridgeActivity      int `json:"bridgeActivity"`
	LPActivity          int `json:"lpActivity"`
	CrossChainDiversity int `json:"crossChainDiversity"`
	VolumeRanking       int `json:"volumeRanking"`
	Combined            int `json:"combined"`
}

// VsAverageUser holds multipliers of the user's metrics over an assumed
// average user, rounded to one decimal.
type VsAverageUser struct {
	VolumeMultiplier      float64 `json:"volumeMultiplier"`
	TransactionMultiplier float64 `json:"transactionMultiplier"`
	ChainMultiplier       float64 `json:"chainMultiplier"`
}

// VsEligibleUsers holds percentiles against an assumed eligible-user cohort.
type VsEligibleUsers struct {
	VolumePercentile    int `json:"volumePercentile"`
	FrequencyPercentile int `json:"frequencyPercentile"`
	DiversityPercentile int `json:"diversityPercentile"`
}

// ComparativeAnalysis bundles both comparison views.
type ComparativeAnalysis struct {
	VsAverageUser   VsAverageUser   `json:"vsAverageUser"`
	VsEligibleUsers VsEligibleUsers `json:"vsEligibleUsers"`
}

// BenchmarkInsights distills the comparison into strengths and improvement room.
type BenchmarkInsights struct {
	StrongestMetrics     []string `json:"strongestMetrics"`
	WeakestMetrics       []string `json:"weakestMetrics"`
	ImprovementPotential int      `json:"improvementPotential"`
	TimeToImprove        int      `json:"timeToImprove"`
}

// HistoricalComparisonResult benchmarks merged metrics against fixed
// historical airdrop criteria snapshots.
type HistoricalComparisonResult struct {
	Airdrops            map[string]AirdropBenchmark    `json:"airdrops"`
	Likelihoods         map[string]LikelihoodBenchmark `json:"likelihoods"`
	OverallPercentile   OverallPercentile              `json:"overallPercentile"`
	ComparativeAnalysis ComparativeAnalysis            `json:"comparativeAnalysis"`
	BenchmarkInsights   BenchmarkInsights              `json:"benchmarkInsights"`
}

// Priority orders immediate actions.
type Priority string

// Action priorities, highest first.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Rank returns the sort position of the priority (high=0, medium=1, low=2).
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Difficulty classifies how hard an action is to execute.
type Difficulty string

// Action difficulties.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ImmediateAction is a single prioritized recommendation.
type ImmediateAction struct {
	Priority        Priority        `json:"priority"`
	Action          string          `json:"action"`
	Description     string          `json:"description"`
	EstimatedImpact int             `json:"estimatedImpact"`
	EstimatedCost   decimal.Decimal `json:"estimatedCost"`
	Timeframe       string          `json:"timeframe"`
	Difficulty      Difficulty      `json:"difficulty"`
}

// Milestone is one step on the long-term path to a target tier.
type Milestone struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Target      string `json:"target"`
}

// LongTermStrategy describes the tier gap and the path to close it.
type LongTermStrategy struct {
	TargetTier      Tier        `json:"targetTier"`
	CurrentGap      int         `json:"currentGap"`
	RecommendedPath []Milestone `json:"recommendedPath"`
}

// ProtocolTargets is a per-protocol block of concrete targets.
type ProtocolTargets struct {
	Protocol          string          `json:"protocol"`
	TargetVolume      decimal.Decimal `json:"targetVolume"`
	TargetFrequency   string          `json:"targetFrequency"`
	RecommendedRoutes []string        `json:"recommendedRoutes"`
	RecommendedPools  []string        `json:"recommendedPools,omitempty"`
}

// RiskConsideration flags a risk the user should weigh before acting.
type RiskConsideration struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
}

// CostBenefitAnalysis holds heuristic cost/benefit estimates. The formulas
// are fixed so regression tests on fixed inputs stay meaningful.
type CostBenefitAnalysis struct {
	EstimatedTotalCost             decimal.Decimal `json:"estimatedTotalCost"`
	EstimatedScoreImprovement      int             `json:"estimatedScoreImprovement"`
	EstimatedPercentileImprovement int             `json:"estimatedPercentileImprovement"`
	ROI                            float64         `json:"roi"`
	BreakEvenAirdropValue          decimal.Decimal `json:"breakEvenAirdropValue"`
}

// UserType buckets users by overall activity level.
type UserType string

// User type buckets.
const (
	UserWhale   UserType = "whale"
	UserRegular UserType = "regular"
	UserCasual  UserType = "casual"
	UserNew     UserType = "new"
)

// PersonalizedInsights summarizes the user's standing for the recommendation
// response.
type PersonalizedInsights struct {
	UserType             UserType `json:"userType"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	OpportunityScore     int      `json:"opportunityScore"`
	CompetitiveAdvantage string   `json:"competitiveAdvantage"`
}

// BridgeRecommendation is the full recommendation block.
type BridgeRecommendation struct {
	ImmediateActions        []ImmediateAction    `json:"immediateActions"`
	LongTermStrategy        LongTermStrategy     `json:"longTermStrategy"`
	ProtocolRecommendations []ProtocolTargets    `json:"protocolRecommendations"`
	RiskConsiderations      []RiskConsideration  `json:"riskConsiderations"`
	CostBenefitAnalysis     CostBenefitAnalysis  `json:"costBenefitAnalysis"`
	PersonalizedInsights    PersonalizedInsights `json:"personalizedInsights"`
}

// OverallMetrics merges both protocols into one comparable metric set.
type OverallMetrics struct {
	TotalBridgeVolume        decimal.Decimal `json:"totalBridgeVolume"`
	TotalBridgeTransactions  int             `json:"totalBridgeTransactions"`
	TotalLPVolume            decimal.Decimal `json:"totalLPVolume"`
	TotalLPDuration          float64         `json:"totalLPDuration"`
	CombinedEligibilityScore int             `json:"combinedEligibilityScore"`
	OverallTier              Tier            `json:"overallTier"`
	PercentileRank           int             `json:"percentileRank"`
}

// AnalysisMetadata describes the quality and provenance of an analysis.
type AnalysisMetadata struct {
	AnalysisVersion string   `json:"analysisVersion"`
	DataFreshness   int64    `json:"dataFreshness"`
	Completeness    int      `json:"completeness"`
	Reliability     int      `json:"reliability"`
	ProcessingTime  int64    `json:"processingTime"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
}

// ComprehensiveBridgeAnalysis is the single assembled response for one
// address. Protocol results are nil when that adapter failed; the analysis
// still proceeds with whatever succeeded.
type ComprehensiveBridgeAnalysis struct {
	Address              string                      `json:"address"`
	Timestamp            int64                       `json:"timestamp"`
	OrbiterActivity      *ProtocolActivityResult     `json:"orbiterActivity"`
	HopActivity          *BridgeAndLPActivityResult  `json:"hopActivity"`
	HistoricalComparison *HistoricalComparisonResult `json:"historicalComparison"`
	Recommendations      *BridgeRecommendation       `json:"recommendations"`
	OverallMetrics       OverallMetrics              `json:"overallMetrics"`
	Metadata             AnalysisMetadata            `json:"metadata"`
}

// NewAnalysis creates an empty analysis shell for an address with the current
// timestamp.
func NewAnalysis(address string) *ComprehensiveBridgeAnalysis {
	return &ComprehensiveBridgeAnalysis{
		Address:   address,
		Timestamp: time.Now().UnixMilli(),
		OverallMetrics: OverallMetrics{
			TotalBridgeVolume: decimal.Zero,
			TotalLPVolume:     decimal.Zero,
			OverallTier:       TierNone,
		},
		Metadata: AnalysisMetadata{
			AnalysisVersion: Version,
			Errors:          []string{},
			Warnings:        []string{},
		},
	}
}
