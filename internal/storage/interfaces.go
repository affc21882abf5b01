// Package storage defines persistence interfaces for scan archival.
// Implementations live in subpackages (memory, postgres, clickhouse).
package storage

import (
	"context"
	"time"

	"solana-riskscan/internal/domain"
)

// ArchivedScan is the persisted form of one completed scan.
type ArchivedScan struct {
	ID            int64
	Mint          string
	Mode          domain.ScanMode
	Score         int
	Grade         domain.Grade
	Label         string
	TotalDeducted int
	Critical      bool
	Result        *domain.ScanResult // full payload, stored as JSON
	ScannedAt     time.Time
}

// ScanStore persists completed scan results.
type ScanStore interface {
	// Insert archives a scan result.
	Insert(ctx context.Context, scan *ArchivedScan) error

	// GetLatestByMint returns the most recent archived scan for a mint.
	// Returns ErrNotFound when the mint has never been scanned.
	GetLatestByMint(ctx context.Context, mint string) (*ArchivedScan, error)

	// GetByMint returns archived scans for a mint, newest first, up to limit.
	GetByMint(ctx context.Context, mint string, limit int) ([]*ArchivedScan, error)
}

// ScorePoint is one observation in the per-mint score timeseries.
type ScorePoint struct {
	Mint      string
	Mode      domain.ScanMode
	Score     int
	Grade     domain.Grade
	Critical  bool
	ScannedAt time.Time
}

// ScoreTimeseriesStore records score observations for trend analysis.
type ScoreTimeseriesStore interface {
	// InsertPoints writes a batch of score observations.
	InsertPoints(ctx context.Context, points []ScorePoint) error

	// GetPoints returns observations for a mint within [from, to), oldest
	// first.
	GetPoints(ctx context.Context, mint string, from, to time.Time) ([]ScorePoint, error)
}
