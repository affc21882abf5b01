package memory

import (
	"context"
	"sort"
	"sync"

	"solana-riskscan/internal/storage"
)

// ScanStore is an in-memory implementation of storage.ScanStore.
type ScanStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string][]*storage.ArchivedScan // mint -> scans, append order
}

// NewScanStore creates a new in-memory scan store.
func NewScanStore() *ScanStore {
	return &ScanStore{
		nextID: 1,
		data:   make(map[string][]*storage.ArchivedScan),
	}
}

// Compile-time interface check.
var _ storage.ScanStore = (*ScanStore)(nil)

// Insert archives a scan result.
func (s *ScanStore) Insert(_ context.Context, scan *storage.ArchivedScan) error {
	if scan == nil || scan.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *scan
	copy.ID = s.nextID
	s.nextID++
	s.data[scan.Mint] = append(s.data[scan.Mint], &copy)
	return nil
}

// GetLatestByMint returns the most recent archived scan for a mint.
func (s *ScanStore) GetLatestByMint(_ context.Context, mint string) (*storage.ArchivedScan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scans := s.data[mint]
	if len(scans) == 0 {
		return nil, storage.ErrNotFound
	}

	latest := scans[0]
	for _, scan := range scans[1:] {
		if scan.ScannedAt.After(latest.ScannedAt) {
			latest = scan
		}
	}

	copy := *latest
	return &copy, nil
}

// GetByMint returns archived scans for a mint, newest first, up to limit.
func (s *ScanStore) GetByMint(_ context.Context, mint string, limit int) ([]*storage.ArchivedScan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.ArchivedScan
	for _, scan := range s.data[mint] {
		copy := *scan
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].ScannedAt.Equal(result[j].ScannedAt) {
			return result[i].ScannedAt.After(result[j].ScannedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
