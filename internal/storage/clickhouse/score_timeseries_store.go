package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/storage"
)

// ScoreTimeseriesStore implements storage.ScoreTimeseriesStore using ClickHouse.
type ScoreTimeseriesStore struct {
	conn *Conn
}

// NewScoreTimeseriesStore creates a new ScoreTimeseriesStore.
func NewScoreTimeseriesStore(conn *Conn) *ScoreTimeseriesStore {
	return &ScoreTimeseriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreTimeseriesStore = (*ScoreTimeseriesStore)(nil)

// InsertPoints writes a batch of score observations.
func (s *ScoreTimeseriesStore) InsertPoints(ctx context.Context, points []storage.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_timeseries (
			mint, mode, score, grade, critical, scanned_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Mint, string(p.Mode), int32(p.Score), string(p.Grade),
			p.Critical, p.ScannedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetPoints returns observations for a mint within [from, to), oldest first.
func (s *ScoreTimeseriesStore) GetPoints(ctx context.Context, mint string, from, to time.Time) ([]storage.ScorePoint, error) {
	query := `
		SELECT mint, mode, score, grade, critical, scanned_at
		FROM score_timeseries
		WHERE mint = ? AND scanned_at >= ? AND scanned_at < ?
		ORDER BY scanned_at ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, from, to)
	if err != nil {
		return nil, fmt.Errorf("query score points: %w", err)
	}
	defer rows.Close()

	var points []storage.ScorePoint
	for rows.Next() {
		var (
			p     storage.ScorePoint
			mode  string
			score int32
			grade string
		)
		if err := rows.Scan(&p.Mint, &mode, &score, &grade, &p.Critical, &p.ScannedAt); err != nil {
			return nil, fmt.Errorf("scan score point row: %w", err)
		}
		p.Mode = domain.ScanMode(mode)
		p.Score = int(score)
		p.Grade = domain.Grade(grade)
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score point rows: %w", err)
	}

	return points, nil
}
