package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/snapshot"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// ErrNotFound is returned when no snapshot exists for a date.
var ErrNotFound = fmt.Errorf("snapshot not found")

const filePrefix = "macro_"

// FileStore persists one JSON record per calendar date under a flat
// directory. Saving the same date again replaces the previous record.
type FileStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{
		dir:    dir,
		logger: log.WithField("module", "storage"),
	}, nil
}

func (s *FileStore) path(date string) string {
	return filepath.Join(s.dir, filePrefix+date+".json")
}

// Save writes the snapshot record for its date, replacing any existing
// record. The write goes through a temp file so a crash never leaves a
// half-written record behind.
func (s *FileStore) Save(ctx context.Context, snap contracts.MarketSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := snapshot.Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.Date, err)
	}

	target := s.path(snap.Date)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", snap.Date, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit snapshot %s: %w", snap.Date, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"date": snap.Date,
		"path": target,
		"size": len(data),
	}).Info("Snapshot saved")
	return nil
}

// Load reads the snapshot record for a date.
func (s *FileStore) Load(ctx context.Context, date string) (contracts.MarketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return contracts.MarketSnapshot{}, err
	}

	data, err := os.ReadFile(s.path(date))
	if os.IsNotExist(err) {
		return contracts.MarketSnapshot{}, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if err != nil {
		return contracts.MarketSnapshot{}, fmt.Errorf("read snapshot %s: %w", date, err)
	}
	return snapshot.Decode(data)
}

// Exists reports whether a record is present for a date.
func (s *FileStore) Exists(date string) bool {
	_, err := os.Stat(s.path(date))
	return err == nil
}

// ListDates returns every stored date in ascending order.
func (s *FileStore) ListDates(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list data dir %s: %w", s.dir, err)
	}

	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".json"))
	}
	sort.Strings(dates)
	return dates, nil
}

// LoadRange returns the snapshots stored between two dates, inclusive,
// in ascending date order. Dates with no record are skipped.
func (s *FileStore) LoadRange(ctx context.Context, from, to string) ([]contracts.MarketSnapshot, error) {
	dates, err := s.ListDates(ctx)
	if err != nil {
		return nil, err
	}

	var snaps []contracts.MarketSnapshot
	for _, date := range dates {
		if date < from || date > to {
			continue
		}
		snap, err := s.Load(ctx, date)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
