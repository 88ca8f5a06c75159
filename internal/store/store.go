// Package store persists per-ticker history tables. Tables are append-only:
// merging keeps the first row ever written for a slot, so a retried run in
// the same slot can never overwrite what an earlier run recorded.
package store

import (
	"fmt"

	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/models"
)

// HistoryStore loads and rewrites whole per-ticker tables. Tables are small
// (one row per ticker per hour) so there is no streaming access.
type HistoryStore interface {
	LoadForum(ticker string) ([]models.ForumHistoryEntry, error)
	SaveForum(ticker string, rows []models.ForumHistoryEntry) error
	LoadPreopen(ticker string) ([]models.PreopenHistoryEntry, error)
	SavePreopen(ticker string, rows []models.PreopenHistoryEntry) error
	Close() error
}

// New picks the backend from configuration.
func New(cfg *config.Config) (HistoryStore, error) {
	switch cfg.Storage.Backend {
	case "", "csv":
		return NewCSVStore(cfg.DataDir()), nil
	case "postgres":
		return NewPostgresStore(cfg.Storage.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

type slotKey struct {
	date   string
	hour   int
	minute int
}

// MergeForum appends row and de-duplicates on (date, hour), keeping the
// first occurrence.
func MergeForum(existing []models.ForumHistoryEntry, row models.ForumHistoryEntry) []models.ForumHistoryEntry {
	all := make([]models.ForumHistoryEntry, 0, len(existing)+1)
	all = append(all, existing...)
	all = append(all, row)

	seen := make(map[slotKey]bool, len(all))
	merged := all[:0]
	for _, r := range all {
		key := slotKey{date: r.Date.Format("2006-01-02"), hour: r.Hour}
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, r)
	}
	return merged
}

// MergePreopen appends row and de-duplicates on (date, hour, minute),
// keeping the first occurrence.
func MergePreopen(existing []models.PreopenHistoryEntry, row models.PreopenHistoryEntry) []models.PreopenHistoryEntry {
	all := make([]models.PreopenHistoryEntry, 0, len(existing)+1)
	all = append(all, existing...)
	all = append(all, row)

	seen := make(map[slotKey]bool, len(all))
	merged := all[:0]
	for _, r := range all {
		key := slotKey{date: r.Date.Format("2006-01-02"), hour: r.Hour, minute: r.Minute}
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, r)
	}
	return merged
}
