package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-riskscan/internal/domain"
)

// SimulatorClient calls an external sell-simulation service. The service
// builds and simulates a sell transaction against the live pool; a failed
// route means the token cannot be sold.
type SimulatorClient struct {
	baseURL string
	client  Doer
}

// NewSimulatorClient creates a sell-simulation source for the given service.
func NewSimulatorClient(baseURL string, client Doer) *SimulatorClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &SimulatorClient{baseURL: baseURL, client: client}
}

// Simulate runs a sell simulation for the mint.
func (c *SimulatorClient) Simulate(ctx context.Context, mint string) (*domain.SellSimResult, error) {
	url := fmt.Sprintf("%s/v1/simulate-sell/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("simulator request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No route for this token, the simulator has no opinion.
		return nil, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("simulator status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		IsHoneypot bool   `json:"isHoneypot"`
		Reason     string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode simulator response: %w", err)
	}

	return &domain.SellSimResult{
		Honeypot: payload.IsHoneypot,
		Reason:   payload.Reason,
	}, nil
}

// Verify interface compliance at compile time.
var _ SellSimSource = (*SimulatorClient)(nil)
