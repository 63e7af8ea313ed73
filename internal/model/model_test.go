package model

import "testing"

func TestTierRankOrdering(t *testing.T) {
	ordered := []Tier{TierNone, TierBronze, TierSilver, TierGold, TierPlatinum}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("%s should outrank %s", ordered[i], ordered[i-1])
		}
	}
}

func TestValidTier(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierBronze, TierSilver, TierGold, TierPlatinum} {
		if !ValidTier(tier) {
			t.Errorf("ValidTier(%s) = false", tier)
		}
	}
	if ValidTier(Tier("diamond")) {
		t.Error("unknown tier values must be rejected")
	}
}

func TestPriorityRank(t *testing.T) {
	if PriorityHigh.Rank() >= PriorityMedium.Rank() || PriorityMedium.Rank() >= PriorityLow.Rank() {
		t.Error("priority ranks must sort high before medium before low")
	}
}

func TestValidTimelineEventType(t *testing.T) {
	for _, e := range []TimelineEventType{EventBridge, EventLPDeposit, EventLPWithdraw, EventRewardsClaim} {
		if !ValidTimelineEventType(e) {
			t.Errorf("ValidTimelineEventType(%s) = false", e)
		}
	}
	if ValidTimelineEventType(TimelineEventType("teleport")) {
		t.Error("unknown event types must be rejected")
	}
}

func TestNewAnalysis(t *testing.T) {
	a := NewAnalysis("0xabc")

	if a.Address != "0xabc" {
		t.Errorf("Address = %q", a.Address)
	}
	if a.Timestamp == 0 {
		t.Error("Timestamp should be set")
	}
	if a.OverallMetrics.OverallTier != TierNone {
		t.Errorf("OverallTier = %s, want none", a.OverallMetrics.OverallTier)
	}
	if a.Metadata.AnalysisVersion != Version {
		t.Errorf("AnalysisVersion = %q, want %q", a.Metadata.AnalysisVersion, Version)
	}
	if a.OrbiterActivity != nil || a.HopActivity != nil {
		t.Error("protocol results must start nil until an adapter succeeds")
	}
}

func TestAnalysisErrorContext(t *testing.T) {
	ae := NewAnalysisError(CodeUpstreamError, "boom", "orbiter", SeverityMedium, true)
	ae.WithContext("status", 502)

	if ae.Context["status"] != 502 {
		t.Errorf("Context[status] = %v, want 502", ae.Context["status"])
	}
	if ae.Error() != "orbiter [UPSTREAM_ERROR]: boom" {
		t.Errorf("Error() = %q", ae.Error())
	}
	if ae.Timestamp == 0 {
		t.Error("Timestamp should be set")
	}
}
