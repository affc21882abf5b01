package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/storage"
)

// ScanStore implements storage.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *Pool
}

// NewScanStore creates a new ScanStore.
func NewScanStore(pool *Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScanStore = (*ScanStore)(nil)

// Insert archives a scan result. The full ScanResult payload is stored as
// JSONB alongside the queryable columns.
func (s *ScanStore) Insert(ctx context.Context, scan *storage.ArchivedScan) error {
	if scan == nil || scan.Mint == "" {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(scan.Result)
	if err != nil {
		return fmt.Errorf("marshal scan result: %w", err)
	}

	query := `
		INSERT INTO scans (
			mint, mode, score, grade, label, total_deducted, critical, result, scanned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.pool.Exec(ctx, query,
		scan.Mint,
		string(scan.Mode),
		scan.Score,
		string(scan.Grade),
		scan.Label,
		scan.TotalDeducted,
		scan.Critical,
		payload,
		scan.ScannedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

// GetLatestByMint returns the most recent archived scan for a mint.
func (s *ScanStore) GetLatestByMint(ctx context.Context, mint string) (*storage.ArchivedScan, error) {
	query := `
		SELECT id, mint, mode, score, grade, label, total_deducted, critical, result, scanned_at
		FROM scans
		WHERE mint = $1
		ORDER BY scanned_at DESC, id DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, mint)
	scan, err := scanArchivedScan(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest scan: %w", err)
	}
	return scan, nil
}

// GetByMint returns archived scans for a mint, newest first, up to limit.
func (s *ScanStore) GetByMint(ctx context.Context, mint string, limit int) ([]*storage.ArchivedScan, error) {
	query := `
		SELECT id, mint, mode, score, grade, label, total_deducted, critical, result, scanned_at
		FROM scans
		WHERE mint = $1
		ORDER BY scanned_at DESC, id DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query, mint, limit)
	if err != nil {
		return nil, fmt.Errorf("get scans by mint: %w", err)
	}
	defer rows.Close()

	var scans []*storage.ArchivedScan
	for rows.Next() {
		scan, err := scanArchivedScan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan rows: %w", err)
	}
	return scans, nil
}

// scanArchivedScan scans a single row.
func scanArchivedScan(row pgx.Row) (*storage.ArchivedScan, error) {
	var (
		scan    storage.ArchivedScan
		mode    string
		grade   string
		payload []byte
	)

	err := row.Scan(
		&scan.ID,
		&scan.Mint,
		&mode,
		&scan.Score,
		&grade,
		&scan.Label,
		&scan.TotalDeducted,
		&scan.Critical,
		&payload,
		&scan.ScannedAt,
	)
	if err != nil {
		return nil, err
	}

	scan.Mode = domain.ScanMode(mode)
	scan.Grade = domain.Grade(grade)
	if len(payload) > 0 {
		var result domain.ScanResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("unmarshal scan result: %w", err)
		}
		scan.Result = &result
	}
	return &scan, nil
}
