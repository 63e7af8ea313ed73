package types

import "testing"

func TestNormalizeChain(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"ethereum", "ethereum"},
		{"ETH", "ethereum"},
		{"Mainnet", "ethereum"},
		{"arb", "arbitrum"},
		{" Arbitrum.One ", "arbitrum"},
		{"OP", "optimism"},
		{"matic", "polygon"},
		{"zksync-era", "zksync"},
		{"avax", "avalanche"},
		{"bnb", "bsc"},
		{"SomeNewChain", "somenewchain"},
	}

	for _, tt := range tests {
		if got := NormalizeChain(tt.label); got != tt.want {
			t.Errorf("NormalizeChain(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestAllChainsAreCanonical(t *testing.T) {
	for _, c := range AllChains {
		if got := NormalizeChain(string(c)); got != string(c) {
			t.Errorf("NormalizeChain(%q) = %q, canonical names must be fixpoints", c, got)
		}
	}
}
