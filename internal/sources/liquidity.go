package sources

import (
	"context"
	"strings"

	"solana-riskscan/internal/domain"
)

// AggregatorLiquiditySource derives liquidity depth from aggregator pair
// data. It reuses prefetched market data when the orchestrator already
// queried the aggregator for mode detection.
type AggregatorLiquiditySource struct {
	market MarketSource
}

// NewAggregatorLiquiditySource creates a liquidity source on top of a
// market source.
func NewAggregatorLiquiditySource(market MarketSource) *AggregatorLiquiditySource {
	return &AggregatorLiquiditySource{market: market}
}

// Fetch resolves the deepest open-market pool for the mint.
// Curve-DEX pairs are skipped: their "liquidity" is the curve reserve, not
// a pool that can be pulled.
func (s *AggregatorLiquiditySource) Fetch(ctx context.Context, mint string, prefetched *domain.MarketData) (*domain.LiquidityInfo, error) {
	data := prefetched
	if data == nil {
		fetched, err := s.market.Fetch(ctx, mint)
		if err != nil {
			return nil, err
		}
		data = fetched
	}

	for _, pair := range data.Pairs { // sorted by liquidity DESC
		if strings.EqualFold(pair.DexID, DexIDPumpFun) {
			continue
		}
		return &domain.LiquidityInfo{
			USD:         pair.LiquidityUSD,
			DexName:     pair.DexID,
			PairAddress: pair.PairAddress,
		}, nil
	}

	return nil, ErrUnavailable
}

// Verify interface compliance at compile time.
var _ LiquiditySource = (*AggregatorLiquiditySource)(nil)
