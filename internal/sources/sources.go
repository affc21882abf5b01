// Package sources contains the data-source adapters a scan fans out to.
// Every adapter is independently callable and independently failing: a
// returned ErrUnavailable means the source responded but had no applicable
// data, any other error means the source attempted and failed.
package sources

import (
	"context"
	"errors"

	"solana-riskscan/internal/domain"
)

// ErrUnavailable indicates the source had no data for the token (e.g. no
// trading pair indexed yet). Callers map it to CheckUnknown, never to a
// penalty.
var ErrUnavailable = errors.New("source has no data")

// ChainContextSource reads the on-chain mint account.
type ChainContextSource interface {
	Fetch(ctx context.Context, mint string) (*domain.ChainContext, error)
}

// CurveStateSource reads and decodes the bonding-curve account of a mint.
type CurveStateSource interface {
	Fetch(ctx context.Context, mint string) (*domain.CurveState, error)
}

// HolderSource computes the holder distribution of a mint.
// excludeAddresses removes pool and curve accounts from the ranking.
type HolderSource interface {
	Fetch(ctx context.Context, mint string, totalSupply uint64, excludeAddresses []string) (*domain.HolderDistribution, error)
}

// LiquiditySource resolves open-market liquidity, optionally reusing
// prefetched market data to avoid a second aggregator round trip.
type LiquiditySource interface {
	Fetch(ctx context.Context, mint string, prefetched *domain.MarketData) (*domain.LiquidityInfo, error)
}

// MetadataSource reads token metadata (on-chain account plus off-chain JSON).
type MetadataSource interface {
	Fetch(ctx context.Context, mint string) (*domain.TokenMetadata, error)
}

// MarketSource queries the market aggregator for pairs and pricing.
type MarketSource interface {
	Fetch(ctx context.Context, mint string) (*domain.MarketData, error)
}

// SellSimSource simulates a sell of the token.
type SellSimSource interface {
	Simulate(ctx context.Context, mint string) (*domain.SellSimResult, error)
}

// VerifiedLookup reports whether an aggregator lists the token as verified.
type VerifiedLookup interface {
	Verified(ctx context.Context, mint string) (bool, error)
}
