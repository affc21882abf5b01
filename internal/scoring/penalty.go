// Package scoring converts raw check outputs into a bounded, explainable
// risk score. Calculate and ResolveGrade are pure: identical inputs always
// produce identical outputs, which is what makes a score explainable to a
// user and testable in isolation.
package scoring

import (
	"fmt"

	"solana-riskscan/internal/domain"
)

// Penalty point tables. Mode-dependent thresholds live next to the rule that
// applies them.
const (
	pointsSellSimFailed    = 100
	pointsMintAuthority    = 50
	pointsFreezeAuthority  = 30
	pointsDevSoldOutOpen   = 25
	pointsDevSoldOutCurve  = 40
	pointsMutableMetadata  = 10
	pointsNoSocials        = 10
	pointsYoungToken       = 15
	pointsLiquidityUnknown = 10
)

// Calculator computes penalties for a completed check bag.
type Calculator struct{}

// NewCalculator creates a penalty calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate applies every penalty rule for the given mode and returns the
// final score with the ordered penalty list. An allow-list entry suppresses
// individual rules and may raise the score floor; the floor never suppresses
// a critical flag.
func (c *Calculator) Calculate(checks domain.CheckBag, mode domain.ScanMode, entry *domain.AllowListEntry) (int, []domain.PenaltyDetail) {
	var skip domain.SkipChecks
	if entry != nil {
		skip = entry.SkipChecks
	}

	open := mode == domain.ModeOpenMarket
	var penalties []domain.PenaltyDetail
	add := func(p domain.PenaltyDetail) {
		penalties = append(penalties, p)
	}

	// Sell-simulation failure. Curve mode is exempt: the simulation route
	// structurally does not exist before graduation.
	if open && !skip.SellSim && checks.SellSim.Succeeded() && checks.SellSim.Data.Honeypot {
		reason := "Sell simulation failed: token cannot be sold"
		if checks.SellSim.Data.Reason != "" {
			reason = fmt.Sprintf("Sell simulation failed: %s", checks.SellSim.Data.Reason)
		}
		add(domain.PenaltyDetail{
			Category: domain.CategorySellSim,
			Reason:   reason,
			Points:   pointsSellSimFailed,
			Critical: true,
		})
	}

	// Authorities. In curve mode the mint authority is expected to be the
	// curve program and must not be penalized.
	if open && checks.Chain.Succeeded() {
		if !skip.MintAuthority && checks.Chain.Data.MintAuthority != nil {
			add(domain.PenaltyDetail{
				Category: domain.CategoryMintAuthority,
				Reason:   "Mint authority has not been revoked: supply can be inflated at will",
				Points:   pointsMintAuthority,
				Critical: true,
			})
		}
		if !skip.FreezeAuthority && checks.Chain.Data.FreezeAuthority != nil {
			add(domain.PenaltyDetail{
				Category: domain.CategoryFreezeAuth,
				Reason:   "Freeze authority has not been revoked: holder accounts can be frozen",
				Points:   pointsFreezeAuthority,
				Critical: true,
			})
		}
	}

	if !skip.Deployer && checks.Insider.Succeeded() {
		c.applyDeployerRules(checks.Insider.Data, mode, add)
	}

	// Liquidity depth is an open-market concern; curve mode tracks
	// bonding-curve progress instead.
	if open && !skip.Liquidity {
		c.applyLiquidityRules(checks.Liquidity, add)
	}

	if !skip.Concentration && checks.Holders.Succeeded() {
		c.applyConcentrationRule(checks.Holders.Data, mode, add)
	}

	if !skip.Clustering && checks.Holders.Succeeded() {
		c.applyClusteringRule(checks.Holders.Data.ClusterCount, add)
	}

	// Curve-mode metadata is mutable by platform convention.
	if open && !skip.Metadata && checks.Metadata.Succeeded() && checks.Metadata.Data.Mutable {
		add(domain.PenaltyDetail{
			Category: domain.CategoryMetadata,
			Reason:   "Token metadata is mutable: name, symbol and image can be changed",
			Points:   pointsMutableMetadata,
			Critical: false,
		})
	}

	if !skip.Socials && checks.Metadata.Succeeded() && !checks.Metadata.Data.Socials.HasAny() {
		add(domain.PenaltyDetail{
			Category: domain.CategorySocials,
			Reason:   "No social links present in token metadata",
			Points:   pointsNoSocials,
			Critical: false,
		})
	}

	if open && !skip.Age && checks.Age.Succeeded() && checks.Age.Data.Hours < 24 {
		add(domain.PenaltyDetail{
			Category: domain.CategoryAge,
			Reason:   fmt.Sprintf("Token is %.1f hours old (less than 24h)", checks.Age.Data.Hours),
			Points:   pointsYoungToken,
			Critical: false,
		})
	}

	total := 0
	for _, p := range penalties {
		total += p.Points
	}

	score := 100 - total
	if score < 0 {
		score = 0
	}

	// Allow-list floor: raises the numeric score only. Grade resolution
	// still sees any remaining critical flags.
	if entry != nil && entry.MinScore > 0 && score < entry.MinScore {
		score = entry.MinScore
		if score > 100 {
			score = 100
		}
	}

	return score, penalties
}

// applyDeployerRules covers deployer exit and residual-holding tiers.
// Curve-stage abandonment is weighted worse because the token has not yet
// proven itself on the open market.
func (c *Calculator) applyDeployerRules(insider *domain.AdvancedInsiderData, mode domain.ScanMode, add func(domain.PenaltyDetail)) {
	if insider.DevSoldOut {
		points := pointsDevSoldOutOpen
		if mode == domain.ModeCurve {
			points = pointsDevSoldOutCurve
		}
		add(domain.PenaltyDetail{
			Category: domain.CategoryDeployer,
			Reason:   fmt.Sprintf("Deployer has fully exited (%.2f%% of supply remaining)", insider.DevBalancePct),
			Points:   points,
			Critical: false,
		})
		return
	}

	held := insider.DevBalancePct
	switch mode {
	case domain.ModeCurve:
		switch {
		case held > 10:
			add(deployerHolding(held, 25))
		case held > 5:
			add(deployerHolding(held, 15))
		}
	case domain.ModeOpenMarket:
		if held > 30 {
			add(deployerHolding(held, 20))
		}
	}
}

func deployerHolding(pct float64, points int) domain.PenaltyDetail {
	return domain.PenaltyDetail{
		Category: domain.CategoryDeployer,
		Reason:   fmt.Sprintf("Deployer still holds %.1f%% of supply", pct),
		Points:   points,
		Critical: false,
	}
}

// applyLiquidityRules scores open-market liquidity depth. Unresolved
// liquidity is itself a risk signal in open-market mode, unlike other
// checks where absence of data is absence of penalty.
func (c *Calculator) applyLiquidityRules(liq domain.CheckResult[domain.LiquidityInfo], add func(domain.PenaltyDetail)) {
	if !liq.Succeeded() {
		add(domain.PenaltyDetail{
			Category: domain.CategoryLiquidity,
			Reason:   "Liquidity could not be determined",
			Points:   pointsLiquidityUnknown,
			Critical: false,
		})
		return
	}

	usd := liq.Data.USD
	switch {
	case usd == 0:
		add(domain.PenaltyDetail{
			Category: domain.CategoryLiquidity,
			Reason:   "No liquidity: token cannot be traded",
			Points:   50,
			Critical: true,
		})
	case usd < 1_000:
		add(liquidityPenalty(usd, 30))
	case usd < 10_000:
		add(liquidityPenalty(usd, 20))
	case usd < 50_000:
		add(liquidityPenalty(usd, 10))
	}
}

func liquidityPenalty(usd float64, points int) domain.PenaltyDetail {
	return domain.PenaltyDetail{
		Category: domain.CategoryLiquidity,
		Reason:   fmt.Sprintf("Low liquidity: $%.0f", usd),
		Points:   points,
		Critical: false,
	}
}

// applyConcentrationRule computes the top-10 and single-largest-holder
// candidate penalties and applies only the larger one. Both metrics measure
// the same underlying risk; emitting both would double-penalize it. The
// reason cites both metrics for transparency regardless of which one wins.
func (c *Calculator) applyConcentrationRule(dist *domain.HolderDistribution, mode domain.ScanMode, add func(domain.PenaltyDetail)) {
	topTen := dist.TopTenPct
	largest := dist.LargestPct

	var topTenPenalty int
	if mode == domain.ModeOpenMarket {
		switch {
		case topTen > 80:
			topTenPenalty = 50
		case topTen > 60:
			topTenPenalty = 35
		case topTen > 50:
			topTenPenalty = 25
		case topTen > 40:
			topTenPenalty = 15
		case topTen > 30:
			topTenPenalty = 10
		}
	} else {
		switch {
		case topTen > 50:
			topTenPenalty = 25
		case topTen > 35:
			topTenPenalty = 15
		}
	}

	var singlePenalty int
	if mode == domain.ModeOpenMarket {
		switch {
		case largest > 50:
			singlePenalty = 40
		case largest > 30:
			singlePenalty = 30
		case largest > 20:
			singlePenalty = 20
		case largest > 10:
			singlePenalty = 10
		}
	} else if largest > 20 {
		singlePenalty = 20
	}

	if topTenPenalty == 0 && singlePenalty == 0 {
		return
	}

	var reason string
	points := topTenPenalty
	if singlePenalty > topTenPenalty {
		points = singlePenalty
		reason = fmt.Sprintf("Largest holder controls %.1f%% of supply (top 10 hold %.1f%%)", largest, topTen)
	} else {
		reason = fmt.Sprintf("Top 10 holders control %.1f%% of supply (largest holder %.1f%%)", topTen, largest)
	}

	add(domain.PenaltyDetail{
		Category: domain.CategoryConcentration,
		Reason:   reason,
		Points:   points,
		Critical: false,
	})
}

// applyClusteringRule scores wallets with suspiciously similar balances.
func (c *Calculator) applyClusteringRule(clustered int, add func(domain.PenaltyDetail)) {
	var points int
	critical := false
	switch {
	case clustered >= 10:
		points = 50
		critical = true
	case clustered >= 6:
		points = 30
	case clustered >= 3:
		points = 15
	default:
		return
	}

	add(domain.PenaltyDetail{
		Category: domain.CategoryClustering,
		Reason:   fmt.Sprintf("%d wallets hold suspiciously similar balances", clustered),
		Points:   points,
		Critical: critical,
	})
}
