package sources

import (
	"context"
	"errors"
	"testing"

	"solana-riskscan/internal/domain"
)

type stubMarketSource struct {
	data  *domain.MarketData
	err   error
	calls int
}

func (s *stubMarketSource) Fetch(context.Context, string) (*domain.MarketData, error) {
	s.calls++
	return s.data, s.err
}

func TestAggregatorLiquiditySource_SkipsCurvePairs(t *testing.T) {
	src := NewAggregatorLiquiditySource(&stubMarketSource{})

	prefetched := &domain.MarketData{
		Pairs: []domain.MarketPair{
			{DexID: "pumpfun", PairAddress: "curve", LiquidityUSD: 900_000},
			{DexID: "raydium", PairAddress: "pool", LiquidityUSD: 40_000},
			{DexID: "orca", PairAddress: "pool2", LiquidityUSD: 10_000},
		},
	}

	liq, err := src.Fetch(context.Background(), testMint, prefetched)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if liq.DexName != "raydium" || liq.USD != 40_000 {
		t.Errorf("Expected deepest open-market pool, got %+v", liq)
	}
}

func TestAggregatorLiquiditySource_OnlyCurvePairs(t *testing.T) {
	src := NewAggregatorLiquiditySource(&stubMarketSource{})

	prefetched := &domain.MarketData{
		Pairs: []domain.MarketPair{{DexID: "PumpFun", LiquidityUSD: 5_000}},
	}

	if _, err := src.Fetch(context.Background(), testMint, prefetched); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable with curve pairs only, got %v", err)
	}
}

func TestAggregatorLiquiditySource_FetchesWhenNotPrefetched(t *testing.T) {
	market := &stubMarketSource{
		data: &domain.MarketData{
			Pairs: []domain.MarketPair{{DexID: "raydium", PairAddress: "p", LiquidityUSD: 1}},
		},
	}
	src := NewAggregatorLiquiditySource(market)

	if _, err := src.Fetch(context.Background(), testMint, nil); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if market.calls != 1 {
		t.Errorf("Expected one aggregator call, got %d", market.calls)
	}
}

func TestAggregatorLiquiditySource_PrefetchedSkipsAggregator(t *testing.T) {
	market := &stubMarketSource{}
	src := NewAggregatorLiquiditySource(market)

	prefetched := &domain.MarketData{
		Pairs: []domain.MarketPair{{DexID: "raydium", LiquidityUSD: 1}},
	}
	if _, err := src.Fetch(context.Background(), testMint, prefetched); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if market.calls != 0 {
		t.Errorf("Prefetched data must not trigger an aggregator call, got %d", market.calls)
	}
}
