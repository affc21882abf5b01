// Package mode decides whether a token trades on the bonding curve or on
// the open market. Ground-truth structural signals outrank market-indexer
// heuristics, which lag for brand-new tokens.
package mode

import (
	"strings"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
)

// curveMintSuffix is the naming convention of curve-issued mints. It is the
// last-resort heuristic that keeps very new, unindexed curve tokens from
// being mis-scored as "zero liquidity".
const curveMintSuffix = "pump"

// curveDexID is the aggregator identifier of the curve-issuing DEX.
const curveDexID = "pumpfun"

// Detector resolves the scan mode via a fixed precedence chain.
type Detector struct{}

// NewDetector creates a mode detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect resolves the operating mode of a token. First match wins:
//
//  1. allow-listed or wrapped-native mint: open market, hard override
//  2. mint authority held by the expected bonding-curve PDA: curve
//  3. curve account exists and is incomplete: curve
//  4. curve account exists and is complete (graduated): open market
//  5. aggregator reports a curve-DEX pair: curve; any other pair: open market
//  6. mint matches the curve issuer's naming convention: curve
//  7. default: open market
//
// The returned market data, when non-nil, is the aggregator payload the
// detector examined; callers reuse it to avoid a second fetch.
func (d *Detector) Detect(
	mint string,
	allowListed bool,
	curve domain.CheckResult[domain.CurveState],
	chain domain.CheckResult[domain.ChainContext],
	market domain.CheckResult[domain.MarketData],
) (domain.ScanMode, *domain.MarketData) {
	var marketData *domain.MarketData
	if market.Succeeded() {
		marketData = market.Data
	}

	// Rule 1: hard override, skip all heuristics.
	if allowListed || mint == solana.WrappedSOLMint {
		return domain.ModeOpenMarket, marketData
	}

	// Rule 2: authority identity is structural ground truth. A token whose
	// mint authority is the curve PDA cannot fake being anything else.
	if chain.Succeeded() && chain.Data.MintAuthority != nil {
		if pda, err := solana.BondingCurvePDA(mint); err == nil && pda == *chain.Data.MintAuthority {
			return domain.ModeCurve, marketData
		}
	}

	// Rules 3 and 4: directly-read curve account.
	if curve.Succeeded() {
		if !curve.Data.Complete {
			return domain.ModeCurve, marketData
		}
		return domain.ModeOpenMarket, marketData
	}

	// Rule 5: aggregator pairs.
	if marketData != nil && len(marketData.Pairs) > 0 {
		for _, pair := range marketData.Pairs {
			if strings.EqualFold(pair.DexID, curveDexID) {
				return domain.ModeCurve, marketData
			}
		}
		return domain.ModeOpenMarket, marketData
	}

	// Rule 6: naming-convention heuristic.
	if strings.HasSuffix(mint, curveMintSuffix) {
		return domain.ModeCurve, marketData
	}

	// Rule 7: default.
	return domain.ModeOpenMarket, marketData
}
