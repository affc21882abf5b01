// Package allowlist holds override policies for pre-vetted tokens: static
// seeds, operator-provided YAML entries, and tokens dynamically verified on
// a market aggregator. An entry never increases risk, it only suppresses
// specific penalties or raises the score floor.
package allowlist

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/solana"
	"solana-riskscan/internal/sources"
)

// Well-known mints seeded at startup.
const (
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDTMint = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

// verifiedCacheTTL bounds how long an aggregator verification verdict is
// reused before being re-checked.
const verifiedCacheTTL = 1 * time.Hour

// verifiedEntry is the policy applied to aggregator-verified tokens: benign
// presentation penalties are suppressed and the score floor is raised, but
// no authority or liquidity rule is skipped.
var verifiedEntry = domain.AllowListEntry{
	Label:    "Aggregator verified",
	Verified: true,
	MinScore: 50,
	SkipChecks: domain.SkipChecks{
		Metadata: true,
		Socials:  true,
		Age:      true,
	},
}

// Registry resolves allow-list entries for mints.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.AllowListEntry

	lookup   sources.VerifiedLookup
	cache    Cache
	cacheTTL time.Duration
	logger   *log.Logger
}

// Options configures a Registry.
type Options struct {
	// Lookup checks the aggregator for verified tokens; nil disables the
	// dynamic path.
	Lookup sources.VerifiedLookup
	// Cache stores lookup verdicts; a MemoryCache is used when nil.
	Cache Cache
	// SeedFile is an optional YAML file with additional entries.
	SeedFile string
	Logger   *log.Logger
}

// New creates a registry pre-seeded with wrapped SOL and the major
// stablecoins. Stablecoin issuers keep their authorities active by design,
// so those rules are skipped for the seeds.
func New(opts Options) (*Registry, error) {
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[allowlist] ", log.LstdFlags)
	}

	r := &Registry{
		entries:  make(map[string]domain.AllowListEntry),
		lookup:   opts.Lookup,
		cache:    cache,
		cacheTTL: verifiedCacheTTL,
		logger:   logger,
	}

	stablecoin := domain.SkipChecks{
		MintAuthority:   true,
		FreezeAuthority: true,
		Concentration:   true,
		Deployer:        true,
	}
	r.entries[solana.WrappedSOLMint] = domain.AllowListEntry{
		Label:    "Wrapped SOL",
		MinScore: 95,
		SkipChecks: domain.SkipChecks{
			MintAuthority: true, Concentration: true, Deployer: true, Socials: true, Metadata: true,
		},
	}
	r.entries[USDCMint] = domain.AllowListEntry{Label: "USDC", MinScore: 95, SkipChecks: stablecoin}
	r.entries[USDTMint] = domain.AllowListEntry{Label: "USDT", MinScore: 95, SkipChecks: stablecoin}

	if opts.SeedFile != "" {
		if err := r.LoadFile(opts.SeedFile); err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
	}

	return r, nil
}

// seedFileEntry is one YAML seed-file record.
type seedFileEntry struct {
	Mint  string                `yaml:"mint"`
	Entry domain.AllowListEntry `yaml:",inline"`
}

// LoadFile merges entries from a YAML seed file into the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var seeds []seedFileEntry
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range seeds {
		if s.Mint == "" {
			return fmt.Errorf("seed entry without mint in %s", path)
		}
		r.entries[s.Mint] = s.Entry
	}
	return nil
}

// Lookup resolves the entry for a mint: static entries first, then the
// cached aggregator verification. Lookup failures degrade to "no entry";
// an unreachable aggregator must never make a token look riskier or less
// risky than the static policy says.
func (r *Registry) Lookup(ctx context.Context, mint string) *domain.AllowListEntry {
	r.mu.RLock()
	entry, ok := r.entries[mint]
	r.mu.RUnlock()
	if ok {
		e := entry
		return &e
	}

	if r.lookup == nil {
		return nil
	}

	if value, hit, err := r.cache.Get(ctx, "verified:"+mint); err == nil && hit {
		if value == "1" {
			e := verifiedEntry
			return &e
		}
		return nil
	}

	verified, err := r.lookup.Verified(ctx, mint)
	if err != nil {
		r.logger.Printf("verified lookup for %s failed: %v", mint, err)
		return nil
	}

	value := "0"
	if verified {
		value = "1"
	}
	if err := r.cache.Set(ctx, "verified:"+mint, value, r.cacheTTL); err != nil {
		r.logger.Printf("cache verified verdict for %s: %v", mint, err)
	}

	if verified {
		e := verifiedEntry
		return &e
	}
	return nil
}
