// Package aggregate runs both protocol adapters concurrently, joins their
// results without short-circuiting, and assembles the comprehensive analysis.
// One failed adapter degrades the result; it never aborts the request.
package aggregate

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/bridge-eligibility-ea/internal/benchmark"
	"github.com/yourorg/bridge-eligibility-ea/internal/fetch"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
	"github.com/yourorg/bridge-eligibility-ea/internal/otel"
	"github.com/yourorg/bridge-eligibility-ea/internal/recommend"
	"github.com/yourorg/bridge-eligibility-ea/internal/scoring"
)

// Analyzer orchestrates the full analysis workflow for one address.
type Analyzer struct {
	orbiter fetch.BridgeProvider
	hop     fetch.BridgeLPProvider
	now     func() time.Time
}

// NewAnalyzer creates an Analyzer over the two protocol adapters.
func NewAnalyzer(orbiter fetch.BridgeProvider, hop fetch.BridgeLPProvider) *Analyzer {
	return &Analyzer{
		orbiter: orbiter,
		hop:     hop,
		now:     time.Now,
	}
}

// Result pairs the assembled analysis with the classified per-service errors
// for the response envelope.
type Result struct {
	Analysis *model.ComprehensiveBridgeAnalysis
	Errors   []*model.AnalysisError
	Warnings []string
}

// orbiterSettled carries one settled Orbiter fetch.
type orbiterSettled struct {
	res *model.ProtocolActivityResult
	err error
}

// hopSettled carries one settled Hop fetch.
type hopSettled struct {
	res *model.BridgeAndLPActivityResult
	err error
}

// Analyze fetches from both adapters in parallel, waits for both to settle,
// and merges whatever succeeded into a single analysis.
func (a *Analyzer) Analyze(ctx context.Context, address string) *Result {
	ctx, span := otel.Tracer().Start(ctx, "analyze.bridge",
		trace.WithAttributes(otel.AddressAttribute(address)))
	defer span.End()

	start := a.now()
	analysis := model.NewAnalysis(address)
	result := &Result{
		Analysis: analysis,
		Errors:   []*model.AnalysisError{},
		Warnings: []string{},
	}

	orbiterCh := make(chan orbiterSettled, 1)
	hopCh := make(chan hopSettled, 1)

	go func() {
		res, err := a.orbiter.FetchBridgeActivity(ctx, address)
		orbiterCh <- orbiterSettled{res, err}
	}()
	go func() {
		res, err := a.hop.FetchBridgeLPActivity(ctx, address)
		hopCh <- hopSettled{res, err}
	}()

	// Await both regardless of individual failure.
	orbiter := <-orbiterCh
	hop := <-hopCh

	if orbiter.err != nil {
		otel.RecordError(ctx, orbiter.err)
		ae := model.AsAnalysisError(orbiter.err, fetch.ServiceOrbiter)
		result.Errors = append(result.Errors, ae)
		result.Warnings = append(result.Warnings,
			"orbiter bridge data unavailable, analysis is based on remaining sources")
		logrus.WithError(orbiter.err).WithField("address", address).Warn("Orbiter adapter failed")
	} else {
		analysis.OrbiterActivity = orbiter.res
	}

	if hop.err != nil {
		otel.RecordError(ctx, hop.err)
		ae := model.AsAnalysisError(hop.err, fetch.ServiceHop)
		result.Errors = append(result.Errors, ae)
		result.Warnings = append(result.Warnings,
			"hop bridge and LP data unavailable, analysis is based on remaining sources")
		logrus.WithError(hop.err).WithField("address", address).Warn("Hop adapter failed")
	} else {
		analysis.HopActivity = hop.res
	}

	successCount := 0
	if analysis.OrbiterActivity != nil {
		successCount++
	}
	if analysis.HopActivity != nil {
		successCount++
	}

	analysis.OverallMetrics = a.mergeMetrics(analysis)

	if successCount > 0 {
		metrics := mergedBenchmarkMetrics(analysis)
		analysis.HistoricalComparison = benchmark.Compare(metrics)
		analysis.OverallMetrics.PercentileRank = analysis.HistoricalComparison.OverallPercentile.Combined
		analysis.Recommendations = recommend.Recommend(metrics, analysis.HistoricalComparison)
	} else {
		result.Warnings = append(result.Warnings,
			"historical comparison skipped: no protocol data available")
	}

	errStrings := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		errStrings = append(errStrings, e.Error())
	}

	analysis.Metadata = model.AnalysisMetadata{
		AnalysisVersion: model.Version,
		DataFreshness:   a.now().UnixMilli(),
		Completeness:    50 * successCount,
		Reliability:     reliability(len(result.Errors), len(result.Warnings)),
		ProcessingTime:  a.now().Sub(start).Milliseconds(),
		Errors:          errStrings,
		Warnings:        result.Warnings,
	}

	return result
}

// mergeMetrics combines the per-protocol results into the overall metric set.
func (a *Analyzer) mergeMetrics(analysis *model.ComprehensiveBridgeAnalysis) model.OverallMetrics {
	m := model.OverallMetrics{
		TotalBridgeVolume: decimal.Zero,
		TotalLPVolume:     decimal.Zero,
	}

	var orbiterScore, hopScore int
	haveOrbiter, haveHop := false, false

	if o := analysis.OrbiterActivity; o != nil {
		m.TotalBridgeVolume = m.TotalBridgeVolume.Add(o.TotalVolume)
		m.TotalBridgeTransactions += o.TotalTransactions
		orbiterScore = o.EligibilityScore
		haveOrbiter = true
	}
	if h := analysis.HopActivity; h != nil {
		m.TotalBridgeVolume = m.TotalBridgeVolume.Add(h.BridgeActivity.TotalVolume)
		m.TotalBridgeTransactions += h.BridgeActivity.TotalTransactions
		m.TotalLPVolume = h.LPActivity.TotalLiquidityProvided
		m.TotalLPDuration = h.LPActivity.PerformanceMetrics.TotalTimeProviding
		hopScore = h.EligibilityMetrics.CombinedScore
		haveHop = true
	}

	switch {
	case haveOrbiter && haveHop:
		m.CombinedEligibilityScore = int(math.Round(float64(orbiterScore+hopScore) / 2))
	case haveOrbiter:
		m.CombinedEligibilityScore = orbiterScore
	case haveHop:
		m.CombinedEligibilityScore = hopScore
	default:
		m.CombinedEligibilityScore = 0
	}

	m.OverallTier = scoring.OverallTier(m.CombinedEligibilityScore)
	return m
}

// mergedBenchmarkMetrics builds the comparator input from the analysis.
func mergedBenchmarkMetrics(analysis *model.ComprehensiveBridgeAnalysis) benchmark.Metrics {
	m := benchmark.Metrics{
		CombinedScore: analysis.OverallMetrics.CombinedEligibilityScore,
		BridgeVolume:  analysis.OverallMetrics.TotalBridgeVolume,
		LPVolume:      analysis.OverallMetrics.TotalLPVolume,
	}

	chains := map[string]struct{}{}
	fallbackChains := 0
	var firstTx, lastTx int64

	collect := func(p *model.ProtocolActivityResult) {
		m.TotalTransactions += p.TotalTransactions
		for chain := range p.ChainDistribution {
			chains[chain] = struct{}{}
		}
		// Some upstreams report a chain count without a distribution.
		if len(p.ChainDistribution) == 0 && p.UniqueChains > fallbackChains {
			fallbackChains = p.UniqueChains
		}
		if p.FirstTransaction > 0 && (firstTx == 0 || p.FirstTransaction < firstTx) {
			firstTx = p.FirstTransaction
		}
		if p.LastTransaction > lastTx {
			lastTx = p.LastTransaction
		}
	}

	if analysis.OrbiterActivity != nil {
		collect(analysis.OrbiterActivity)
	}
	if h := analysis.HopActivity; h != nil {
		collect(&h.BridgeActivity)
		m.LPDurationDays = h.LPActivity.AveragePositionDuration
		m.LPPositions = h.LPActivity.TotalPositions
	}

	m.UniqueChains = len(chains)
	if fallbackChains > m.UniqueChains {
		m.UniqueChains = fallbackChains
	}
	m.AvgTxPerMonth = txPerMonth(m.TotalTransactions, firstTx, lastTx)
	return m
}

// txPerMonth derives average monthly frequency from the activity span. A span
// under one month counts as one month.
func txPerMonth(totalTx int, firstMillis, lastMillis int64) float64 {
	if totalTx <= 0 {
		return 0
	}
	const monthMillis = 30 * 24 * float64(time.Hour/time.Millisecond)
	months := float64(lastMillis-firstMillis) / monthMillis
	if months < 1 {
		months = 1
	}
	return float64(totalTx) / months
}

// reliability is 100 minus fixed penalties per error and warning, clamped.
func reliability(errCount, warnCount int) int {
	r := 100 - 20*errCount - 5*warnCount
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
