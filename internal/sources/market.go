package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"solana-riskscan/internal/domain"
)

// DexIDPumpFun is the aggregator's identifier for pairs on the curve-issuing
// DEX; any other dexId implies open-market trading.
const DexIDPumpFun = "pumpfun"

// DexScreenerClient queries a DexScreener-compatible pair aggregator.
type DexScreenerClient struct {
	baseURL string
	client  Doer
}

// NewDexScreenerClient creates a market source for the given aggregator URL.
func NewDexScreenerClient(baseURL string, client Doer) *DexScreenerClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DexScreenerClient{baseURL: baseURL, client: client}
}

// dexScreenerResponse mirrors the aggregator's token endpoint payload.
type dexScreenerResponse struct {
	Pairs []dexScreenerPair `json:"pairs"`
}

type dexScreenerPair struct {
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	PriceUSD    string `json:"priceUsd"`
	Liquidity   struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	FDV         float64 `json:"fdv"`
	MarketCap   float64 `json:"marketCap"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	PairCreatedAt int64 `json:"pairCreatedAt"` // unix ms
}

// Fetch retrieves all pairs for a mint and collapses them into MarketData.
// Pairs are sorted by USD liquidity descending; the first pair is the
// reference for price and liquidity. This sort order is part of the adapter
// contract, downstream code relies on it.
func (c *DexScreenerClient) Fetch(ctx context.Context, mint string) (*domain.MarketData, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("aggregator status %d: %s", resp.StatusCode, string(body))
	}

	var payload dexScreenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode aggregator response: %w", err)
	}
	if len(payload.Pairs) == 0 {
		return nil, ErrUnavailable
	}

	pairs := make([]domain.MarketPair, 0, len(payload.Pairs))
	for _, p := range payload.Pairs {
		price, _ := strconv.ParseFloat(p.PriceUSD, 64)
		pairs = append(pairs, domain.MarketPair{
			DexID:        p.DexID,
			PairAddress:  p.PairAddress,
			LiquidityUSD: p.Liquidity.USD,
			PriceUSD:     price,
			CreatedAt:    time.UnixMilli(p.PairCreatedAt).UTC(),
		})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].LiquidityUSD > pairs[j].LiquidityUSD
	})

	best := payload.Pairs[0]
	marketCap := best.MarketCap
	for _, p := range payload.Pairs {
		if p.MarketCap > 0 {
			marketCap = p.MarketCap
			break
		}
		if marketCap == 0 && p.FDV > 0 {
			marketCap = p.FDV
		}
	}

	data := &domain.MarketData{
		PriceUSD:       pairs[0].PriceUSD,
		MarketCapUSD:   marketCap,
		PriceChange24h: best.PriceChange.H24,
		Pairs:          pairs,
	}

	// Earliest pair creation approximates token age.
	for _, p := range pairs {
		if p.CreatedAt.IsZero() || p.CreatedAt.Unix() <= 0 {
			continue
		}
		if data.PairCreatedAt.IsZero() || p.CreatedAt.Before(data.PairCreatedAt) {
			data.PairCreatedAt = p.CreatedAt
		}
	}

	return data, nil
}

// Verify interface compliance at compile time.
var _ MarketSource = (*DexScreenerClient)(nil)
