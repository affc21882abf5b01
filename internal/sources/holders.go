package sources

import (
	"context"
	"fmt"
	"math"
	"sort"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
)

// Cluster-detection tunables. The thresholds are behavioral-parity values,
// not claimed optimal; tests pin them.
const (
	// clusterBandWidthPct buckets holders into bands of this width
	// (percent of supply). Three or more wallets in one band count as a
	// cluster.
	clusterBandWidthPct = 0.1
	clusterMinWallets   = 3
	// Only holders inside this percent-of-supply window participate in
	// band clustering; dust and pool-sized accounts are noise.
	clusterMinHolderPct = 0.5
	clusterMaxHolderPct = 10.0
	// Near-linear top-10 detection: consecutive balance deltas within this
	// relative tolerance of their mean, with a total spread below
	// nearLinearMaxSpread points, mark the whole run as clustered.
	nearLinearTolerance = 0.15
	nearLinearMaxSpread = 2.0
)

// RPCHolderSource builds holder distributions from getTokenLargestAccounts.
type RPCHolderSource struct {
	rpc solana.RPCClient
}

// NewRPCHolderSource creates a holder source backed by an RPC client.
func NewRPCHolderSource(rpc solana.RPCClient) *RPCHolderSource {
	return &RPCHolderSource{rpc: rpc}
}

// Fetch retrieves the largest accounts of the mint, removes excluded
// addresses (pools, curve accounts) and computes concentration metrics.
// totalSupply of 0 falls back to a getTokenSupply call.
func (s *RPCHolderSource) Fetch(ctx context.Context, mint string, totalSupply uint64, excludeAddresses []string) (*domain.HolderDistribution, error) {
	if totalSupply == 0 {
		supply, err := s.rpc.GetTokenSupply(ctx, mint)
		if err != nil {
			return nil, fmt.Errorf("get token supply: %w", err)
		}
		if supply == nil || supply.Amount == 0 {
			return nil, ErrUnavailable
		}
		totalSupply = supply.Amount
	}

	accounts, err := s.rpc.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		return nil, fmt.Errorf("get largest accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrUnavailable
	}

	excluded := make(map[string]struct{}, len(excludeAddresses))
	for _, a := range excludeAddresses {
		excluded[a] = struct{}{}
	}

	holders := make([]domain.TopHolder, 0, len(accounts))
	for _, acc := range accounts {
		if _, skip := excluded[acc.Address]; skip {
			continue
		}
		holders = append(holders, domain.TopHolder{
			Address: acc.Address,
			Amount:  acc.Amount,
			Pct:     float64(acc.Amount) / float64(totalSupply) * 100,
		})
	}

	return BuildDistribution(holders), nil
}

// BuildDistribution computes concentration metrics from a holder list.
// The list is sorted by amount descending before any metric is taken.
func BuildDistribution(holders []domain.TopHolder) *domain.HolderDistribution {
	sort.Slice(holders, func(i, j int) bool {
		return holders[i].Amount > holders[j].Amount
	})

	dist := &domain.HolderDistribution{TopHolders: holders}

	for i, h := range holders {
		if i >= 10 {
			break
		}
		dist.TopTenPct += h.Pct
	}
	if len(holders) > 0 {
		dist.LargestPct = holders[0].Pct
	}
	dist.ClusterCount = CountClusteredWallets(holders)

	return dist
}

// CountClusteredWallets detects wallets with suspiciously similar balances.
// Two signals are combined: narrow percent-of-supply bands holding three or
// more wallets, and a near-linear tight distribution across the top 10. The
// larger of the two counts wins so the same wallets are not counted twice.
func CountClusteredWallets(holders []domain.TopHolder) int {
	banded := countBandedWallets(holders)
	linear := countNearLinearTop10(holders)
	if linear > banded {
		return linear
	}
	return banded
}

// countBandedWallets buckets mid-sized holders into clusterBandWidthPct-wide
// bands and sums the population of every band with clusterMinWallets or more.
func countBandedWallets(holders []domain.TopHolder) int {
	bands := make(map[int]int)
	for _, h := range holders {
		if h.Pct < clusterMinHolderPct || h.Pct > clusterMaxHolderPct {
			continue
		}
		bands[int(h.Pct/clusterBandWidthPct)]++
	}

	count := 0
	for _, n := range bands {
		if n >= clusterMinWallets {
			count += n
		}
	}
	return count
}

// countNearLinearTop10 flags the top 10 as clustered when their balances
// step down almost linearly, a signature of one operator splitting a bag.
func countNearLinearTop10(holders []domain.TopHolder) int {
	n := len(holders)
	if n > 10 {
		n = 10
	}
	if n < clusterMinWallets {
		return 0
	}

	top := holders[:n]
	spread := top[0].Pct - top[n-1].Pct
	if spread > nearLinearMaxSpread {
		return 0
	}

	var meanDelta float64
	for i := 1; i < n; i++ {
		meanDelta += top[i-1].Pct - top[i].Pct
	}
	meanDelta /= float64(n - 1)

	for i := 1; i < n; i++ {
		delta := top[i-1].Pct - top[i].Pct
		if math.Abs(delta-meanDelta) > nearLinearTolerance*math.Max(meanDelta, clusterBandWidthPct) {
			return 0
		}
	}

	return n
}

// Verify interface compliance at compile time.
var _ HolderSource = (*RPCHolderSource)(nil)
