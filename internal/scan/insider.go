package scan

import "solana-riskscan/internal/domain"

// devSoldOutBelowPct marks the deployer as fully exited when their balance
// drops under this share of supply.
const devSoldOutBelowPct = 1.0

// computeInsider derives deployer and insider analytics by cross-referencing
// holder data with creator metadata. It is a synthetic check: no calls are
// issued, and when its inputs are absent the result is unknown.
func computeInsider(
	metadata domain.CheckResult[domain.TokenMetadata],
	curve domain.CheckResult[domain.CurveState],
	holders domain.CheckResult[domain.HolderDistribution],
) domain.CheckResult[domain.AdvancedInsiderData] {
	dev := deployerAddress(metadata, curve)
	if dev == "" || !holders.Succeeded() {
		return domain.Unknown[domain.AdvancedInsiderData]()
	}

	dist := holders.Data
	insider := domain.AdvancedInsiderData{
		DevAddress:   dev,
		DevSoldOut:   true,
		ClusterCount: dist.ClusterCount,
	}

	for _, h := range dist.TopHolders {
		if h.Address == dev {
			insider.DevBalancePct = h.Pct
			insider.DevSoldOut = h.Pct < devSoldOutBelowPct
			continue
		}
		// Distribution-only approximations: without per-transaction data,
		// wallets with an outsized early position stand in for snipers, and
		// the clustered wallets grouped in bands stand in for bundles.
		if h.Pct >= 1 {
			insider.SniperCount++
		}
	}
	if dist.ClusterCount >= 3 {
		insider.BundleCount = dist.ClusterCount / 3
	}

	return domain.OK(insider)
}

// deployerAddress resolves the deployer: the curve creator when the account
// records one, otherwise the first verified metadata creator, otherwise the
// first creator.
func deployerAddress(
	metadata domain.CheckResult[domain.TokenMetadata],
	curve domain.CheckResult[domain.CurveState],
) string {
	if curve.Succeeded() && curve.Data.Creator != "" {
		return curve.Data.Creator
	}
	if !metadata.Succeeded() {
		return ""
	}
	for _, c := range metadata.Data.Creators {
		if c.Verified {
			return c.Address
		}
	}
	if len(metadata.Data.Creators) > 0 {
		return metadata.Data.Creators[0].Address
	}
	return ""
}
