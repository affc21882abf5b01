package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-riskscan/internal/storage"
)

// ScoreTimeseriesStore is an in-memory implementation of
// storage.ScoreTimeseriesStore.
type ScoreTimeseriesStore struct {
	mu   sync.RWMutex
	data map[string][]storage.ScorePoint // mint -> points
}

// NewScoreTimeseriesStore creates a new in-memory score timeseries store.
func NewScoreTimeseriesStore() *ScoreTimeseriesStore {
	return &ScoreTimeseriesStore{
		data: make(map[string][]storage.ScorePoint),
	}
}

// Compile-time interface check.
var _ storage.ScoreTimeseriesStore = (*ScoreTimeseriesStore)(nil)

// InsertPoints writes a batch of score observations.
func (s *ScoreTimeseriesStore) InsertPoints(_ context.Context, points []storage.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range points {
		s.data[p.Mint] = append(s.data[p.Mint], p)
	}
	return nil
}

// GetPoints returns observations for a mint within [from, to), oldest first.
func (s *ScoreTimeseriesStore) GetPoints(_ context.Context, mint string, from, to time.Time) ([]storage.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []storage.ScorePoint
	for _, p := range s.data[mint] {
		if !p.ScannedAt.Before(from) && p.ScannedAt.Before(to) {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScannedAt.Before(result[j].ScannedAt)
	})
	return result, nil
}
