package scan

import (
	"context"
	"sync"
	"time"

	"solana-riskscan/internal/domain"
)

// DefaultDedupTTL bounds how long a settled scan keeps answering duplicate
// requests for the same mint.
const DefaultDedupTTL = 30 * time.Second

// dedupEntry is the per-mint slot: absent -> in-flight -> settled -> absent.
type dedupEntry struct {
	done      chan struct{}
	result    *domain.ScanResult
	err       error
	settledAt time.Time // zero while in flight
}

// Deduper prevents duplicate concurrent work for the same mint. A request
// arriving while another scan of the same mint is in flight, or within the
// TTL after it settled, receives the shared outcome instead of triggering a
// new fan-out. Settled entries expire unconditionally, success or failure,
// to bound memory; expiry happens on access rather than via a background
// timer.
type Deduper struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*dedupEntry
	now     func() time.Time
}

// NewDeduper creates a deduplicator with the given TTL after settlement.
func NewDeduper(ttl time.Duration) *Deduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &Deduper{
		ttl:     ttl,
		entries: make(map[string]*dedupEntry),
		now:     time.Now,
	}
}

// Do returns the shared outcome for mint, running run exactly once per TTL
// window. The second return value reports whether this call joined an
// existing entry.
func (d *Deduper) Do(ctx context.Context, mint string, run func() (*domain.ScanResult, error)) (*domain.ScanResult, error, bool) {
	d.mu.Lock()
	d.sweepLocked()

	if e, ok := d.entries[mint]; ok {
		d.mu.Unlock()
		select {
		case <-e.done:
			return e.result, e.err, true
		case <-ctx.Done():
			return nil, ctx.Err(), true
		}
	}

	e := &dedupEntry{done: make(chan struct{})}
	d.entries[mint] = e
	d.mu.Unlock()

	result, err := run()

	d.mu.Lock()
	e.result = result
	e.err = err
	e.settledAt = d.now()
	d.mu.Unlock()
	close(e.done)

	return result, err, false
}

// Invalidate drops the entry for a mint so the next request re-scans.
// In-flight entries are left alone; their callers still share the outcome.
func (d *Deduper) Invalidate(mint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.entries[mint]; ok && !e.settledAt.IsZero() {
		delete(d.entries, mint)
	}
}

// Len reports the number of live entries, in-flight included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked()
	return len(d.entries)
}

// sweepLocked removes settled entries past their TTL. Caller holds d.mu.
func (d *Deduper) sweepLocked() {
	now := d.now()
	for mint, e := range d.entries {
		if !e.settledAt.IsZero() && now.Sub(e.settledAt) > d.ttl {
			delete(d.entries, mint)
		}
	}
}
