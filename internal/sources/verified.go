package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// TokenListClient checks a community token-list service for a "verified"
// tag on a mint. Verified tokens feed the dynamic allow-list.
type TokenListClient struct {
	baseURL string
	client  Doer
}

// NewTokenListClient creates a verified-token lookup for the given service.
func NewTokenListClient(baseURL string, client Doer) *TokenListClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenListClient{baseURL: baseURL, client: client}
}

// Verified reports whether the token list tags the mint as verified.
// An unlisted mint is simply not verified, not an error.
func (c *TokenListClient) Verified(ctx context.Context, mint string) (bool, error) {
	url := fmt.Sprintf("%s/tokens/v1/token/%s", c.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("token list request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("token list status %d", resp.StatusCode)
	}

	var payload struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode token list response: %w", err)
	}

	for _, tag := range payload.Tags {
		if tag == "verified" || tag == "community" {
			return true, nil
		}
	}
	return false, nil
}

// Verify interface compliance at compile time.
var _ VerifiedLookup = (*TokenListClient)(nil)
