package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/snapshot"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// PostgresStore keeps one jsonb record per date in market_snapshots.
// It mirrors the FileStore contract so the two are interchangeable.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore creates the store on an existing pool.
func NewPostgresStore(db *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithField("module", "storage_pg"),
	}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS market_snapshots (
			snapshot_date DATE PRIMARY KEY,
			record        JSONB NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Save upserts the record for the snapshot's date.
func (s *PostgresStore) Save(ctx context.Context, snap contracts.MarketSnapshot) error {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Date, err)
	}

	query := `
		INSERT INTO market_snapshots (snapshot_date, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (snapshot_date) DO UPDATE SET
			record = EXCLUDED.record,
			updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, snap.Date, data); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.Date, err)
	}

	s.logger.WithField("date", snap.Date).Info("Snapshot saved")
	return nil
}

// Load reads the record for a date.
func (s *PostgresStore) Load(ctx context.Context, date string) (contracts.MarketSnapshot, error) {
	var data []byte
	query := `SELECT record FROM market_snapshots WHERE snapshot_date = $1`
	err := s.db.QueryRow(ctx, query, date).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.MarketSnapshot{}, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if err != nil {
		return contracts.MarketSnapshot{}, fmt.Errorf("load snapshot %s: %w", date, err)
	}
	return snapshot.Decode(data)
}

// ListDates returns every stored date in ascending order.
func (s *PostgresStore) ListDates(ctx context.Context) ([]string, error) {
	query := `SELECT to_char(snapshot_date, 'YYYY-MM-DD') FROM market_snapshots ORDER BY snapshot_date`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan snapshot date: %w", err)
		}
		dates = append(dates, date)
	}
	return dates, rows.Err()
}
