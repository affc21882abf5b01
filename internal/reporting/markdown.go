// Package reporting renders scan results for human consumption.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"solana-riskscan/internal/domain"
)

// RenderMarkdown renders a scan result as a Markdown string.
func RenderMarkdown(r *domain.ScanResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# Risk Report: %s\n\n", r.Mint))
	sb.WriteString(fmt.Sprintf("Scanned: %s\n\n", r.ScannedAt.Format(time.RFC3339)))

	// Verdict
	sb.WriteString("## Verdict\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Score | %d / 100 |\n", r.Score))
	sb.WriteString(fmt.Sprintf("| Grade | %s |\n", r.Grade))
	sb.WriteString(fmt.Sprintf("| Label | %s |\n", r.Label))
	sb.WriteString(fmt.Sprintf("| Mode | %s |\n", modeName(r.Mode)))
	sb.WriteString(fmt.Sprintf("| Total Deducted | %d |\n", r.TotalDeducted))
	if r.AllowListed {
		sb.WriteString("| Allow-listed | yes |\n")
	}
	sb.WriteString("\n")

	if r.HasCritical() {
		sb.WriteString("**Critical risk detected.** At least one finding forces the lowest grade regardless of the numeric score.\n\n")
	}

	// Penalties
	sb.WriteString("## Findings\n\n")
	if len(r.Penalties) > 0 {
		sb.WriteString("| Category | Points | Critical | Reason |\n")
		sb.WriteString("|----------|--------|----------|--------|\n")
		for _, p := range r.Penalties {
			critical := ""
			if p.Critical {
				critical = "CRITICAL"
			}
			sb.WriteString(fmt.Sprintf("| %s | -%d | %s | %s |\n",
				p.Category, p.Points, critical, p.Reason))
		}
	} else {
		sb.WriteString("No penalties applied.\n")
	}
	sb.WriteString("\n")

	// Curve progress
	if r.CurveProgress != nil {
		sb.WriteString("## Bonding Curve\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Progress | %.1f%% |\n", r.CurveProgress.Percent))
		sb.WriteString(fmt.Sprintf("| Collected | %.2f SOL |\n", r.CurveProgress.CollectedNative))
		sb.WriteString(fmt.Sprintf("| Remaining | %.2f SOL |\n", r.CurveProgress.RemainingNative))
		if r.CurveProgress.PDA == domain.EstimatedCurvePDA {
			sb.WriteString("| Source | estimated from market cap |\n")
		} else {
			sb.WriteString(fmt.Sprintf("| Curve Account | %s |\n", r.CurveProgress.PDA))
		}
		sb.WriteString("\n")
	}

	// Insider analytics
	if r.Insider != nil {
		sb.WriteString("## Deployer & Insiders\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Deployer | %s |\n", r.Insider.DevAddress))
		sb.WriteString(fmt.Sprintf("| Deployer Balance | %.2f%% |\n", r.Insider.DevBalancePct))
		sb.WriteString(fmt.Sprintf("| Deployer Sold Out | %t |\n", r.Insider.DevSoldOut))
		sb.WriteString(fmt.Sprintf("| Snipers | %d |\n", r.Insider.SniperCount))
		sb.WriteString(fmt.Sprintf("| Bundles | %d |\n", r.Insider.BundleCount))
		sb.WriteString(fmt.Sprintf("| Clustered Wallets | %d |\n", r.Insider.ClusterCount))
		sb.WriteString("\n")
	}

	// Check outcomes
	sb.WriteString("## Checks\n\n")
	sb.WriteString("| Check | Status |\n")
	sb.WriteString("|-------|--------|\n")
	for _, row := range checkRows(r.Checks) {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.name, row.status))
	}
	sb.WriteString("\n")

	return sb.String()
}

type checkRow struct {
	name   string
	status string
}

func checkRows(bag domain.CheckBag) []checkRow {
	return []checkRow{
		{"Mint Account", checkStatus(bag.Chain.Status, bag.Chain.Err)},
		{"Bonding Curve", checkStatus(bag.Curve.Status, bag.Curve.Err)},
		{"Holders", checkStatus(bag.Holders.Status, bag.Holders.Err)},
		{"Liquidity", checkStatus(bag.Liquidity.Status, bag.Liquidity.Err)},
		{"Metadata", checkStatus(bag.Metadata.Status, bag.Metadata.Err)},
		{"Market Data", checkStatus(bag.Market.Status, bag.Market.Err)},
		{"Sell Simulation", checkStatus(bag.SellSim.Status, bag.SellSim.Err)},
		{"Token Age", checkStatus(bag.Age.Status, bag.Age.Err)},
		{"Insider Analysis", checkStatus(bag.Insider.Status, bag.Insider.Err)},
	}
}

func checkStatus(status domain.CheckStatus, errMsg string) string {
	switch status {
	case domain.CheckSuccess:
		return "OK"
	case domain.CheckUnknown:
		return "no data"
	default:
		if errMsg != "" {
			return fmt.Sprintf("error: %s", errMsg)
		}
		return "error"
	}
}

func modeName(mode domain.ScanMode) string {
	if mode == domain.ModeCurve {
		return "bonding curve"
	}
	return "open market"
}
