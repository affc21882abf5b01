package domain

// SkipChecks flags individual penalty rules an allow-list entry suppresses.
// Each rule is suppressed independently; skipping one critical rule never
// implies skipping another.
type SkipChecks struct {
	SellSim         bool `json:"sell_sim" yaml:"sell_sim"`
	MintAuthority   bool `json:"mint_authority" yaml:"mint_authority"`
	FreezeAuthority bool `json:"freeze_authority" yaml:"freeze_authority"`
	Deployer        bool `json:"deployer" yaml:"deployer"`
	Liquidity       bool `json:"liquidity" yaml:"liquidity"`
	Concentration   bool `json:"concentration" yaml:"concentration"`
	Clustering      bool `json:"clustering" yaml:"clustering"`
	Metadata        bool `json:"metadata" yaml:"metadata"`
	Socials         bool `json:"socials" yaml:"socials"`
	Age             bool `json:"age" yaml:"age"`
}

// AllowListEntry is an override policy for a pre-vetted token.
// Presence of an entry never increases risk: it only suppresses specific
// penalty rules and/or raises the score floor.
type AllowListEntry struct {
	Label      string     `json:"label" yaml:"label"`
	SkipChecks SkipChecks `json:"skip_checks" yaml:"skip_checks"`
	// MinScore raises the computed score to this floor when > 0. The floor
	// never suppresses a critical flag.
	MinScore int `json:"min_score" yaml:"min_score"`
	// Verified marks entries added dynamically from an aggregator lookup.
	Verified bool `json:"verified" yaml:"verified"`
}
