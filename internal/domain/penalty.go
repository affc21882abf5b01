package domain

// Penalty categories group related deductions for display.
const (
	CategorySellSim       = "Sell Simulation"
	CategoryMintAuthority = "Mint Authority"
	CategoryFreezeAuth    = "Freeze Authority"
	CategoryDeployer      = "Deployer"
	CategoryLiquidity     = "Liquidity"
	CategoryConcentration = "Holder Concentration"
	CategoryClustering    = "Wallet Clustering"
	CategoryMetadata      = "Metadata"
	CategorySocials       = "Socials"
	CategoryAge           = "Token Age"
)

// PenaltyDetail is one deduction applied during scoring.
// Created once per scan, never mutated, collected in rule order.
type PenaltyDetail struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
	Points   int    `json:"points"` // >= 0
	Critical bool   `json:"critical"`
}
