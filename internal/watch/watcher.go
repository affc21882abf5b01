// Package watch follows bonding-curve accounts over a WebSocket subscription
// and reports graduation: the moment the curve flips to complete and the
// token moves to open-market trading. Cached scan results become stale at
// that moment, so the watcher's callback is wired to cache invalidation.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"solana-riskscan/internal/solana"
	"solana-riskscan/internal/sources"
)

// GraduationHandler is invoked once per watched mint when its curve
// completes.
type GraduationHandler func(mint string)

// Watcher subscribes to bonding-curve accounts and fires a handler on
// graduation.
type Watcher struct {
	ws      solana.WSClient
	handler GraduationHandler
	logger  *log.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // mint -> subscription cancel
	wg      sync.WaitGroup
}

// New creates a graduation watcher.
func New(ws solana.WSClient, handler GraduationHandler, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(os.Stdout, "[watch] ", log.LstdFlags)
	}
	return &Watcher{
		ws:      ws,
		handler: handler,
		logger:  logger,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Watch subscribes to the curve account of a mint. Watching an
// already-watched mint is a no-op. The subscription ends when the curve
// completes, Unwatch is called, or ctx is canceled.
func (w *Watcher) Watch(ctx context.Context, mint string) error {
	pda, err := solana.BondingCurvePDA(mint)
	if err != nil {
		return fmt.Errorf("derive curve pda for %s: %w", mint, err)
	}

	w.mu.Lock()
	if _, exists := w.cancels[mint]; exists {
		w.mu.Unlock()
		return nil
	}
	wctx, cancel := context.WithCancel(ctx)
	w.cancels[mint] = cancel
	w.mu.Unlock()

	notifications, err := w.ws.SubscribeAccount(wctx, pda)
	if err != nil {
		w.remove(mint)
		return fmt.Errorf("subscribe curve account for %s: %w", mint, err)
	}

	w.wg.Add(1)
	go w.run(wctx, mint, notifications)
	w.logger.Printf("watching curve %s for mint %s", pda, mint)
	return nil
}

// Unwatch stops watching a mint.
func (w *Watcher) Unwatch(mint string) {
	w.remove(mint)
}

// Close stops all subscriptions and waits for their goroutines.
func (w *Watcher) Close() {
	w.mu.Lock()
	for mint, cancel := range w.cancels {
		cancel()
		delete(w.cancels, mint)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// Len reports the number of watched mints.
func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cancels)
}

func (w *Watcher) run(ctx context.Context, mint string, notifications <-chan solana.AccountNotification) {
	defer w.wg.Done()
	defer w.remove(mint)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			state, err := sources.DecodeCurveAccount(n.Data)
			if err != nil {
				// Account updates mid-write or of unexpected shape are
				// skipped; the next notification carries fresh state.
				w.logger.Printf("decode curve update for %s: %v", mint, err)
				continue
			}
			if state.Complete {
				w.logger.Printf("mint %s graduated at slot %d", mint, n.Slot)
				if w.handler != nil {
					w.handler(mint)
				}
				return
			}
		}
	}
}

func (w *Watcher) remove(mint string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cancel, ok := w.cancels[mint]; ok {
		cancel()
		delete(w.cancels, mint)
	}
}
