package domain

import "time"

// ChainContext holds the on-chain mint account state.
type ChainContext struct {
	// MintAuthority is nil when the authority has been revoked.
	MintAuthority *string `json:"mint_authority"`
	// FreezeAuthority is nil when the authority has been revoked.
	FreezeAuthority *string `json:"freeze_authority"`
	Supply          uint64  `json:"supply"`
	Decimals        uint8   `json:"decimals"`
}

// CurveState is the decoded bonding-curve account for a token.
type CurveState struct {
	PDA                  string `json:"pda"`
	Complete             bool   `json:"complete"`
	VirtualTokenReserves uint64 `json:"virtual_token_reserves"`
	VirtualSolReserves   uint64 `json:"virtual_sol_reserves"`
	RealTokenReserves    uint64 `json:"real_token_reserves"`
	RealSolReserves      uint64 `json:"real_sol_reserves"`
	TokenTotalSupply     uint64 `json:"token_total_supply"`
	Creator              string `json:"creator,omitempty"`
}

// TopHolder is one entry of the largest-accounts list, pool accounts excluded.
type TopHolder struct {
	Address string  `json:"address"`
	Amount  uint64  `json:"amount"`
	Pct     float64 `json:"pct"` // percent of total supply
}

// HolderDistribution summarizes holder concentration for a token.
type HolderDistribution struct {
	TopHolders   []TopHolder `json:"top_holders"` // sorted by amount DESC
	TopTenPct    float64     `json:"top_ten_pct"`
	LargestPct   float64     `json:"largest_pct"`
	ClusterCount int         `json:"cluster_count"` // wallets with suspiciously similar balances
}

// LiquidityInfo describes the deepest open-market pool for a token.
type LiquidityInfo struct {
	USD         float64 `json:"usd"`
	Burned      bool    `json:"burned"`
	Locked      bool    `json:"locked"`
	DexName     string  `json:"dex_name"`
	PairAddress string  `json:"pair_address"`
}

// Creator is a metadata creator entry.
type Creator struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    uint8  `json:"share"`
}

// Socials holds off-chain social links from token metadata.
type Socials struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Discord  string `json:"discord,omitempty"`
}

// HasAny reports whether at least one social link is present.
func (s Socials) HasAny() bool {
	return s.Website != "" || s.Twitter != "" || s.Telegram != "" || s.Discord != ""
}

// TokenMetadata is the decoded Metaplex metadata plus off-chain fields.
type TokenMetadata struct {
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	URI             string    `json:"uri"`
	Image           string    `json:"image,omitempty"`
	Mutable         bool      `json:"mutable"`
	UpdateAuthority string    `json:"update_authority"`
	Creators        []Creator `json:"creators,omitempty"`
	Socials         Socials   `json:"socials"`
}

// MarketPair is one trading pair reported by the market aggregator.
// Adapters must return pairs sorted by LiquidityUSD descending; the first
// pair is the reference pair for liquidity and pricing.
type MarketPair struct {
	DexID        string    `json:"dex_id"`
	PairAddress  string    `json:"pair_address"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	PriceUSD     float64   `json:"price_usd"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarketData is aggregator-sourced pricing for a token.
type MarketData struct {
	PriceUSD       float64      `json:"price_usd"`
	MarketCapUSD   float64      `json:"market_cap_usd"`
	PriceChange24h float64      `json:"price_change_24h"`
	PairCreatedAt  time.Time    `json:"pair_created_at"`
	Pairs          []MarketPair `json:"pairs"` // sorted by liquidity DESC
}

// SellSimResult is the outcome of a sell-route simulation.
type SellSimResult struct {
	Honeypot bool   `json:"honeypot"`
	Reason   string `json:"reason,omitempty"`
}

// TokenAge is derived from the earliest known pair creation time.
type TokenAge struct {
	CreatedAt time.Time `json:"created_at"`
	Hours     float64   `json:"hours"`
}

// AdvancedInsiderData is derived per scan by cross-referencing holder data
// with creator metadata. It has no independent identity and is recomputed
// on every scan.
type AdvancedInsiderData struct {
	DevAddress    string  `json:"dev_address"`
	DevBalancePct float64 `json:"dev_balance_pct"`
	DevSoldOut    bool    `json:"dev_sold_out"` // deployer balance < 1% of supply
	SniperCount   int     `json:"sniper_count"`
	BundleCount   int     `json:"bundle_count"`
	ClusterCount  int     `json:"cluster_count"`
}
