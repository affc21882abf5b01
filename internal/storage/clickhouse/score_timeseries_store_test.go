package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/storage"
	"solana-riskscan/internal/storage/clickhouse"
)

func testScorePoint(mint string, score int, at time.Time) storage.ScorePoint {
	return storage.ScorePoint{
		Mint:      mint,
		Mode:      domain.ModeOpenMarket,
		Score:     score,
		Grade:     domain.GradeB,
		Critical:  score == 0,
		ScannedAt: at,
	}
}

func TestScoreTimeseriesStore_InsertAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewScoreTimeseriesStore(conn)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	points := []storage.ScorePoint{
		testScorePoint("mintA", 90, base),
		testScorePoint("mintA", 80, base.Add(2*time.Hour)),
		testScorePoint("mintA", 0, base.Add(4*time.Hour)),
		testScorePoint("mintB", 50, base.Add(time.Hour)),
	}
	require.NoError(t, store.InsertPoints(ctx, points))

	got, err := store.GetPoints(ctx, "mintA", base, base.Add(4*time.Hour))
	require.NoError(t, err)

	// Half-open range: the point at exactly base+4h is excluded.
	require.Len(t, got, 2)
	assert.Equal(t, 90, got[0].Score, "oldest first")
	assert.Equal(t, 80, got[1].Score)
	assert.Equal(t, domain.ModeOpenMarket, got[0].Mode)
	assert.Equal(t, domain.GradeB, got[0].Grade)
	assert.False(t, got[0].Critical)
	assert.True(t, got[0].ScannedAt.Equal(base))
}

func TestScoreTimeseriesStore_CriticalFlag(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewScoreTimeseriesStore(conn)
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertPoints(ctx, []storage.ScorePoint{testScorePoint("honeypot", 0, at)}))

	got, err := store.GetPoints(ctx, "honeypot", at, at.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Critical)
}

func TestScoreTimeseriesStore_EmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewScoreTimeseriesStore(conn)
	assert.NoError(t, store.InsertPoints(context.Background(), nil))
}

func TestScoreTimeseriesStore_InvalidPoint(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewScoreTimeseriesStore(conn)
	err := store.InsertPoints(context.Background(), []storage.ScorePoint{{Score: 50}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestScoreTimeseriesStore_NoPointsForUnknownMint(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := clickhouse.NewScoreTimeseriesStore(conn)
	got, err := store.GetPoints(context.Background(), "never-scanned", time.Unix(0, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}
