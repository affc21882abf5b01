package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/storage"
)

func scorePoint(mint string, score int, at time.Time) storage.ScorePoint {
	return storage.ScorePoint{
		Mint:      mint,
		Mode:      domain.ModeOpenMarket,
		Score:     score,
		Grade:     domain.GradeB,
		ScannedAt: at,
	}
}

func TestScoreTimeseriesStore_InsertAndQuery(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	points := []storage.ScorePoint{
		scorePoint("mintA", 80, base.Add(2*time.Hour)),
		scorePoint("mintA", 90, base),
		scorePoint("mintA", 70, base.Add(4*time.Hour)),
		scorePoint("mintB", 10, base.Add(time.Hour)),
	}
	if err := store.InsertPoints(ctx, points); err != nil {
		t.Fatalf("InsertPoints failed: %v", err)
	}

	got, err := store.GetPoints(ctx, "mintA", base, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("GetPoints failed: %v", err)
	}

	// The range is half-open: the point at exactly base+4h is excluded.
	if len(got) != 2 {
		t.Fatalf("Expected 2 points in [from, to), got %d", len(got))
	}
	if got[0].Score != 90 || got[1].Score != 80 {
		t.Errorf("Expected oldest first, got scores %d %d", got[0].Score, got[1].Score)
	}
}

func TestScoreTimeseriesStore_EmptyBatch(t *testing.T) {
	store := NewScoreTimeseriesStore()

	if err := store.InsertPoints(context.Background(), nil); err != nil {
		t.Errorf("Empty batch must be a no-op, got %v", err)
	}
}

func TestScoreTimeseriesStore_InvalidPoint(t *testing.T) {
	store := NewScoreTimeseriesStore()

	err := store.InsertPoints(context.Background(), []storage.ScorePoint{{Score: 50}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for point without mint, got %v", err)
	}
}

func TestScoreTimeseriesStore_NoPointsInRange(t *testing.T) {
	store := NewScoreTimeseriesStore()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	store.InsertPoints(ctx, []storage.ScorePoint{scorePoint("mintA", 50, base)})

	got, err := store.GetPoints(ctx, "mintA", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetPoints failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no points, got %d", len(got))
	}
}
