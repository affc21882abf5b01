// Package curve reconstructs bonding-curve progress when the authoritative
// curve account cannot be read. The estimate fills the gap left by an RPC
// miss or decode failure; it never overrides a directly-read account.
package curve

import "solana-riskscan/internal/domain"

// Empirical curve constants, in native units (SOL). Tunable: the target is
// the program's graduation threshold, the market-cap figure is observed, not
// documented.
const (
	// GraduationTargetSOL is the amount of SOL a curve collects before the
	// token graduates to open-market trading.
	GraduationTargetSOL = 85.0
	// GraduationMarketCapSOL is the empirical market cap, denominated in
	// SOL, at the moment of graduation.
	GraduationMarketCapSOL = 115.0
)

// lamportsPerSOL converts curve account reserve fields to native units.
const lamportsPerSOL = 1_000_000_000

// FromState computes progress from a directly-read curve account.
func FromState(state *domain.CurveState) *domain.CurveProgress {
	collected := float64(state.RealSolReserves) / lamportsPerSOL

	progress := &domain.CurveProgress{
		PDA:             state.PDA,
		CollectedNative: collected,
		RemainingNative: GraduationTargetSOL - collected,
		Complete:        state.Complete,
	}
	if progress.RemainingNative < 0 {
		progress.RemainingNative = 0
	}

	if state.Complete {
		progress.Percent = 100
		progress.RemainingNative = 0
		return progress
	}

	progress.Percent = collected / GraduationTargetSOL * 100
	if progress.Percent > 100 {
		progress.Percent = 100
	}
	return progress
}

// Estimate reconstructs progress from market cap and a reference native
// asset price. The result carries the EstimatedCurvePDA sentinel so it is
// clearly distinguishable from a direct read.
func Estimate(marketCapUSD, nativePriceUSD float64) *domain.CurveProgress {
	if marketCapUSD <= 0 || nativePriceUSD <= 0 {
		return nil
	}

	marketCapSOL := marketCapUSD / nativePriceUSD

	percent := marketCapUSD / (nativePriceUSD * GraduationMarketCapSOL) * 100
	if percent > 100 {
		percent = 100
	}

	collected := marketCapSOL / GraduationMarketCapSOL * GraduationTargetSOL
	remaining := GraduationTargetSOL - collected
	if remaining < 0 {
		remaining = 0
	}

	return &domain.CurveProgress{
		PDA:             domain.EstimatedCurvePDA,
		Percent:         percent,
		CollectedNative: collected,
		RemainingNative: remaining,
	}
}
