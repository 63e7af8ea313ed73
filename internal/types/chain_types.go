// Package types holds shared domain types used across packages.
package types

import "strings"

// SupportedChain identifies a blockchain network tracked by the analyzer.
type SupportedChain string

// Supported blockchain networks
const (
	ChainEthereum  SupportedChain = "ethereum"
	ChainArbitrum  SupportedChain = "arbitrum"
	ChainOptimism  SupportedChain = "optimism"
	ChainPolygon   SupportedChain = "polygon"
	ChainBase      SupportedChain = "base"
	ChainZkSync    SupportedChain = "zksync"
	ChainLinea     SupportedChain = "linea"
	ChainScroll    SupportedChain = "scroll"
	ChainAvalanche SupportedChain = "avalanche"
	ChainBSC       SupportedChain = "bsc"
)

// AllChains lists every supported chain in canonical order.
var AllChains = []SupportedChain{
	ChainEthereum, ChainArbitrum, ChainOptimism, ChainPolygon, ChainBase,
	ChainZkSync, ChainLinea, ChainScroll, ChainAvalanche, ChainBSC,
}

// chainAliases maps upstream label variants to canonical names.
var chainAliases = map[string]SupportedChain{
	"eth":          ChainEthereum,
	"mainnet":      ChainEthereum,
	"arb":          ChainArbitrum,
	"arbitrum.one": ChainArbitrum,
	"op":           ChainOptimism,
	"matic":        ChainPolygon,
	"zksync-era":   ChainZkSync,
	"era":          ChainZkSync,
	"bnb":          ChainBSC,
	"avax":         ChainAvalanche,
}

// NormalizeChain maps an upstream chain label to its canonical name. Unknown
// labels pass through lowercased so distributions keyed by them stay stable.
func NormalizeChain(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if c, ok := chainAliases[l]; ok {
		return string(c)
	}
	return l
}
