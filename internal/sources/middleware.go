package sources

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Doer is the minimal HTTP client surface adapters depend on.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GuardedClient wraps an http.Client with a token-bucket rate limiter and a
// circuit breaker. External aggregators throttle aggressively and fail in
// bursts; the breaker converts a failing upstream into fast errors instead
// of a pile-up of blocked checks.
type GuardedClient struct {
	client  Doer
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// GuardedClientConfig configures a GuardedClient.
type GuardedClientConfig struct {
	// Name labels the breaker in state-change logs and metrics.
	Name string
	// RPS is the sustained request rate allowed to the upstream.
	RPS float64
	// Burst is the token-bucket burst size.
	Burst int
	// Client is the underlying HTTP client; a default one is used when nil.
	Client Doer
	// OnStateChange is invoked when the breaker changes state.
	OnStateChange func(name string, from, to gobreaker.State)
}

// NewGuardedClient creates a rate-limited, circuit-broken HTTP client.
func NewGuardedClient(cfg GuardedClientConfig) *GuardedClient {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}

	settings := gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.ConsecutiveFailures >= 5
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return &GuardedClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Do executes the request, waiting for a rate-limit token first. Server
// errors (5xx) count as breaker failures; 4xx responses pass through.
func (g *GuardedClient) Do(req *http.Request) (*http.Response, error) {
	if err := g.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*http.Response), nil
}

// Verify interface compliance at compile time.
var _ Doer = (*GuardedClient)(nil)
