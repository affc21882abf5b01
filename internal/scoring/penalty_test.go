package scoring

import (
	"reflect"
	"strings"
	"testing"

	"solana-riskscan/internal/domain"
)

// cleanOpenMarketBag returns a check bag with nothing to penalize: revoked
// authorities, deep liquidity, dispersed holders, immutable metadata with
// socials, mature token, passing sell simulation.
func cleanOpenMarketBag() domain.CheckBag {
	return domain.CheckBag{
		Chain: domain.OK(domain.ChainContext{
			MintAuthority:   nil,
			FreezeAuthority: nil,
			Supply:          1_000_000_000,
			Decimals:        6,
		}),
		Curve: domain.Unknown[domain.CurveState](),
		Holders: domain.OK(domain.HolderDistribution{
			TopTenPct:    20,
			LargestPct:   5,
			ClusterCount: 0,
		}),
		Liquidity: domain.OK(domain.LiquidityInfo{USD: 250_000}),
		Metadata: domain.OK(domain.TokenMetadata{
			Name:    "Token",
			Symbol:  "TKN",
			Mutable: false,
			Socials: domain.Socials{Twitter: "https://x.com/token"},
		}),
		Market:  domain.OK(domain.MarketData{PriceUSD: 1}),
		SellSim: domain.OK(domain.SellSimResult{Honeypot: false}),
		Age:     domain.OK(domain.TokenAge{Hours: 72}),
		Insider: domain.OK(domain.AdvancedInsiderData{
			DevAddress:    "dev",
			DevBalancePct: 2,
			DevSoldOut:    false,
		}),
	}
}

func TestCalculate_CleanToken(t *testing.T) {
	calc := NewCalculator()

	score, penalties := calc.Calculate(cleanOpenMarketBag(), domain.ModeOpenMarket, nil)
	if score != 100 {
		t.Errorf("Expected score 100, got %d", score)
	}
	if len(penalties) != 0 {
		t.Errorf("Expected no penalties, got %v", penalties)
	}

	grade, label := ResolveGrade(score, false, 0)
	if grade != domain.GradeA {
		t.Errorf("Expected grade A, got %s", grade)
	}
	if label != "Low Risk" {
		t.Errorf("Expected label Low Risk, got %q", label)
	}
}

func TestCalculate_HoneypotIsCritical(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	bag.SellSim = domain.OK(domain.SellSimResult{Honeypot: true, Reason: "no route"})

	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	if len(penalties) != 1 {
		t.Fatalf("Expected 1 penalty, got %d: %v", len(penalties), penalties)
	}
	p := penalties[0]
	if p.Category != domain.CategorySellSim || p.Points != 100 || !p.Critical {
		t.Errorf("Unexpected penalty: %+v", p)
	}
	if score != 0 {
		t.Errorf("Expected score 0, got %d", score)
	}

	grade, label := ResolveGrade(score, true, 100)
	if grade != domain.GradeF {
		t.Errorf("Expected grade F, got %s", grade)
	}
	if label != "Likely Scam" {
		t.Errorf("Expected label Likely Scam for 100 points, got %q", label)
	}
}

func TestCalculate_ConcentrationNotDoubleCounted(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	// Top-10 triggers 25 points, largest triggers 10; only the max applies.
	bag.Holders = domain.OK(domain.HolderDistribution{
		TopTenPct:  55,
		LargestPct: 12,
	})

	_, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)

	var concentration []domain.PenaltyDetail
	for _, p := range penalties {
		if p.Category == domain.CategoryConcentration {
			concentration = append(concentration, p)
		}
	}
	if len(concentration) != 1 {
		t.Fatalf("Expected exactly 1 concentration penalty, got %d", len(concentration))
	}
	if concentration[0].Points != 25 {
		t.Errorf("Expected 25 points (max of 25 and 10), got %d", concentration[0].Points)
	}
	if !strings.Contains(concentration[0].Reason, "55.0") || !strings.Contains(concentration[0].Reason, "12.0") {
		t.Errorf("Reason should cite both metrics, got %q", concentration[0].Reason)
	}
}

func TestCalculate_AllowListSkipAndFloor(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	authority := "SomeAuthority11111111111111111111111111111"
	bag.Chain = domain.OK(domain.ChainContext{MintAuthority: &authority})
	// A minor penalty to drag the raw score below the floor.
	bag.Metadata = domain.OK(domain.TokenMetadata{Mutable: false, Socials: domain.Socials{}})

	entry := &domain.AllowListEntry{
		Label:      "Stablecoin",
		MinScore:   95,
		SkipChecks: domain.SkipChecks{MintAuthority: true},
	}

	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, entry)

	for _, p := range penalties {
		if p.Category == domain.CategoryMintAuthority {
			t.Errorf("Mint authority penalty should be suppressed, got %+v", p)
		}
	}
	if score != 95 {
		t.Errorf("Expected floor to raise score to 95, got %d", score)
	}
}

func TestCalculate_FloorDoesNotSuppressCritical(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	bag.SellSim = domain.OK(domain.SellSimResult{Honeypot: true})

	entry := &domain.AllowListEntry{MinScore: 95}
	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, entry)

	critical := false
	total := 0
	for _, p := range penalties {
		total += p.Points
		if p.Critical {
			critical = true
		}
	}
	if !critical {
		t.Fatal("Expected critical penalty to survive the floor")
	}
	if score != 95 {
		t.Errorf("Expected numeric floor 95, got %d", score)
	}

	grade, _ := ResolveGrade(score, critical, total)
	if grade != domain.GradeF {
		t.Errorf("Critical must force grade F even at score 95, got %s", grade)
	}
}

func TestCalculate_Determinism(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	bag.Holders = domain.OK(domain.HolderDistribution{TopTenPct: 65, LargestPct: 35, ClusterCount: 7})
	bag.Metadata = domain.OK(domain.TokenMetadata{Mutable: true})

	score1, penalties1 := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	score2, penalties2 := calc.Calculate(bag, domain.ModeOpenMarket, nil)

	if score1 != score2 {
		t.Errorf("Scores differ: %d vs %d", score1, score2)
	}
	if !reflect.DeepEqual(penalties1, penalties2) {
		t.Errorf("Penalty lists differ:\n%v\n%v", penalties1, penalties2)
	}
}

func TestCalculate_Monotonicity(t *testing.T) {
	calc := NewCalculator()

	base := cleanOpenMarketBag()
	baseScore, _ := calc.Calculate(base, domain.ModeOpenMarket, nil)

	// Each mutation adds one penalty rule; the score must never rise.
	mutations := []func(*domain.CheckBag){
		func(b *domain.CheckBag) {
			b.Metadata = domain.OK(domain.TokenMetadata{Mutable: true, Socials: domain.Socials{Twitter: "x"}})
		},
		func(b *domain.CheckBag) { b.Age = domain.OK(domain.TokenAge{Hours: 3}) },
		func(b *domain.CheckBag) { b.Liquidity = domain.OK(domain.LiquidityInfo{USD: 5_000}) },
		func(b *domain.CheckBag) {
			b.Holders = domain.OK(domain.HolderDistribution{TopTenPct: 45, LargestPct: 5})
		},
		func(b *domain.CheckBag) {
			b.Insider = domain.OK(domain.AdvancedInsiderData{DevAddress: "dev", DevSoldOut: true})
		},
	}

	for i, mutate := range mutations {
		bag := cleanOpenMarketBag()
		mutate(&bag)
		score, _ := calc.Calculate(bag, domain.ModeOpenMarket, nil)
		if score > baseScore {
			t.Errorf("Mutation %d increased score: %d > %d", i, score, baseScore)
		}
	}
}

func TestCalculate_ScoreBounds(t *testing.T) {
	calc := NewCalculator()
	// Everything bad at once.
	authority := "Authority"
	bag := domain.CheckBag{
		Chain:     domain.OK(domain.ChainContext{MintAuthority: &authority, FreezeAuthority: &authority}),
		Holders:   domain.OK(domain.HolderDistribution{TopTenPct: 95, LargestPct: 80, ClusterCount: 15}),
		Liquidity: domain.OK(domain.LiquidityInfo{USD: 0}),
		Metadata:  domain.OK(domain.TokenMetadata{Mutable: true}),
		Market:    domain.OK(domain.MarketData{}),
		SellSim:   domain.OK(domain.SellSimResult{Honeypot: true}),
		Age:       domain.OK(domain.TokenAge{Hours: 1}),
		Insider:   domain.OK(domain.AdvancedInsiderData{DevAddress: "dev", DevSoldOut: true}),
	}

	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	if score != 0 {
		t.Errorf("Expected score clamped to 0, got %d", score)
	}

	total := 0
	for _, p := range penalties {
		total += p.Points
	}
	if total <= 170 {
		t.Fatalf("Expected total above 170 for worst case, got %d", total)
	}
	grade, label := ResolveGrade(score, true, total)
	if grade != domain.GradeF || label != "Almost Certain Scam" {
		t.Errorf("Expected F / Almost Certain Scam, got %s / %q", grade, label)
	}
}

func TestCalculate_ModeIsolation(t *testing.T) {
	calc := NewCalculator()
	authority := "Authority"
	bag := cleanOpenMarketBag()
	bag.Chain = domain.OK(domain.ChainContext{MintAuthority: &authority})
	bag.Liquidity = domain.OK(domain.LiquidityInfo{USD: 500})
	bag.Metadata = domain.OK(domain.TokenMetadata{Mutable: true, Socials: domain.Socials{Twitter: "x"}})
	bag.Age = domain.OK(domain.TokenAge{Hours: 2})

	_, openPenalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	_, curvePenalties := calc.Calculate(bag, domain.ModeCurve, nil)

	openCategories := map[string]bool{}
	for _, p := range openPenalties {
		openCategories[p.Category] = true
	}
	for _, want := range []string{
		domain.CategoryMintAuthority,
		domain.CategoryLiquidity,
		domain.CategoryMetadata,
		domain.CategoryAge,
	} {
		if !openCategories[want] {
			t.Errorf("Open-market mode missing expected penalty %s", want)
		}
	}

	// Curve mode: the authority belongs to the curve program, liquidity
	// depth and metadata mutability are not meaningful yet.
	for _, p := range curvePenalties {
		switch p.Category {
		case domain.CategoryMintAuthority, domain.CategoryFreezeAuth,
			domain.CategoryLiquidity, domain.CategoryMetadata, domain.CategoryAge,
			domain.CategorySellSim:
			t.Errorf("Curve mode must not emit %s, got %+v", p.Category, p)
		}
	}
}

func TestCalculate_UnknownLiquidityPenalizedOpenMarketOnly(t *testing.T) {
	calc := NewCalculator()
	bag := cleanOpenMarketBag()
	bag.Liquidity = domain.Unknown[domain.LiquidityInfo]()

	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	if score != 90 {
		t.Errorf("Expected 90 after unresolved-liquidity penalty, got %d", score)
	}
	if len(penalties) != 1 || penalties[0].Category != domain.CategoryLiquidity || penalties[0].Critical {
		t.Errorf("Expected one non-critical liquidity penalty, got %v", penalties)
	}

	score, penalties = calc.Calculate(bag, domain.ModeCurve, nil)
	if score != 100 || len(penalties) != 0 {
		t.Errorf("Curve mode must not penalize unresolved liquidity, got score=%d penalties=%v", score, penalties)
	}
}

func TestCalculate_UnknownChecksNotPenalized(t *testing.T) {
	calc := NewCalculator()
	// Everything unknown except liquidity, which is its own rule.
	bag := domain.CheckBag{
		Chain:     domain.Unknown[domain.ChainContext](),
		Curve:     domain.Unknown[domain.CurveState](),
		Holders:   domain.Unknown[domain.HolderDistribution](),
		Liquidity: domain.OK(domain.LiquidityInfo{USD: 100_000}),
		Metadata:  domain.Unknown[domain.TokenMetadata](),
		Market:    domain.Unknown[domain.MarketData](),
		SellSim:   domain.Unknown[domain.SellSimResult](),
		Age:       domain.Unknown[domain.TokenAge](),
		Insider:   domain.Unknown[domain.AdvancedInsiderData](),
	}

	score, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)
	if score != 100 || len(penalties) != 0 {
		t.Errorf("Unknown checks must not penalize: score=%d penalties=%v", score, penalties)
	}
}

func TestCalculate_DeployerTiers(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name    string
		mode    domain.ScanMode
		insider domain.AdvancedInsiderData
		points  int
	}{
		{"sold out open market", domain.ModeOpenMarket, domain.AdvancedInsiderData{DevSoldOut: true}, 25},
		{"sold out curve", domain.ModeCurve, domain.AdvancedInsiderData{DevSoldOut: true}, 40},
		{"curve heavy residual", domain.ModeCurve, domain.AdvancedInsiderData{DevBalancePct: 12}, 25},
		{"curve moderate residual", domain.ModeCurve, domain.AdvancedInsiderData{DevBalancePct: 7}, 15},
		{"curve small residual", domain.ModeCurve, domain.AdvancedInsiderData{DevBalancePct: 4}, 0},
		{"open heavy residual", domain.ModeOpenMarket, domain.AdvancedInsiderData{DevBalancePct: 35}, 20},
		{"open moderate residual", domain.ModeOpenMarket, domain.AdvancedInsiderData{DevBalancePct: 20}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := cleanOpenMarketBag()
			bag.Insider = domain.OK(tt.insider)
			_, penalties := calc.Calculate(bag, tt.mode, nil)

			got := 0
			for _, p := range penalties {
				if p.Category == domain.CategoryDeployer {
					got += p.Points
				}
			}
			if got != tt.points {
				t.Errorf("Expected %d deployer points, got %d", tt.points, got)
			}
		})
	}
}

func TestCalculate_ClusteringTiers(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		clustered int
		points    int
		critical  bool
	}{
		{0, 0, false},
		{2, 0, false},
		{3, 15, false},
		{5, 15, false},
		{6, 30, false},
		{9, 30, false},
		{10, 50, true},
		{25, 50, true},
	}

	for _, tt := range tests {
		bag := cleanOpenMarketBag()
		bag.Holders = domain.OK(domain.HolderDistribution{TopTenPct: 20, LargestPct: 5, ClusterCount: tt.clustered})
		_, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)

		var got *domain.PenaltyDetail
		for i, p := range penalties {
			if p.Category == domain.CategoryClustering {
				got = &penalties[i]
			}
		}
		if tt.points == 0 {
			if got != nil {
				t.Errorf("clustered=%d: expected no penalty, got %+v", tt.clustered, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("clustered=%d: expected penalty, got none", tt.clustered)
			continue
		}
		if got.Points != tt.points || got.Critical != tt.critical {
			t.Errorf("clustered=%d: got points=%d critical=%t, want points=%d critical=%t",
				tt.clustered, got.Points, got.Critical, tt.points, tt.critical)
		}
	}
}

func TestCalculate_LiquidityTiers(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		usd      float64
		points   int
		critical bool
	}{
		{0, 50, true},
		{500, 30, false},
		{5_000, 20, false},
		{25_000, 10, false},
		{75_000, 0, false},
	}

	for _, tt := range tests {
		bag := cleanOpenMarketBag()
		bag.Liquidity = domain.OK(domain.LiquidityInfo{USD: tt.usd})
		_, penalties := calc.Calculate(bag, domain.ModeOpenMarket, nil)

		var got *domain.PenaltyDetail
		for i, p := range penalties {
			if p.Category == domain.CategoryLiquidity {
				got = &penalties[i]
			}
		}
		if tt.points == 0 {
			if got != nil {
				t.Errorf("usd=%.0f: expected no penalty, got %+v", tt.usd, got)
			}
			continue
		}
		if got == nil || got.Points != tt.points || got.Critical != tt.critical {
			t.Errorf("usd=%.0f: got %+v, want points=%d critical=%t", tt.usd, got, tt.points, tt.critical)
		}
	}
}
