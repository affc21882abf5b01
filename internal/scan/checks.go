package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/sources"
)

// runCheck executes one source fetch under its own timeout and converts the
// outcome to a CheckResult. Panics and errors are contained here; no check
// failure may abort the scan.
func runCheck[T any](ctx context.Context, timeout time.Duration, fetch func(context.Context) (*T, error)) (result domain.CheckResult[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.Fail[T](fmt.Errorf("check panicked: %v", r))
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	value, err := fetch(cctx)
	switch {
	case errors.Is(err, sources.ErrUnavailable):
		return domain.Unknown[T]()
	case err != nil:
		return domain.Fail[T](err)
	case value == nil:
		return domain.Unknown[T]()
	default:
		return domain.OK(*value)
	}
}

// ageFromMarket derives the synthetic token-age check from already-fetched
// market data. It issues no calls of its own.
func ageFromMarket(market domain.CheckResult[domain.MarketData], now time.Time) domain.CheckResult[domain.TokenAge] {
	if !market.Succeeded() {
		return domain.Unknown[domain.TokenAge]()
	}
	created := market.Data.PairCreatedAt
	if created.IsZero() || created.Unix() <= 0 {
		return domain.Unknown[domain.TokenAge]()
	}
	return domain.OK(domain.TokenAge{
		CreatedAt: created,
		Hours:     now.Sub(created).Hours(),
	})
}
