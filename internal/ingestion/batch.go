package ingestion

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/STRATINT/fightintel/internal/models"
)

// NormalizedFight pairs a record with its position in the source batch.
type NormalizedFight struct {
	Index  int                  `json:"index"`
	Record models.MatchupRecord `json:"record"`
}

// BatchStats summarizes a normalization pass.
type BatchStats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// ProcessBatch normalizes every well-formed entry, preserving relative order.
// Malformed entries are logged and skipped.
func ProcessBatch(entries []models.RawFightEntry, logger *slog.Logger) ([]NormalizedFight, BatchStats) {
	stats := BatchStats{Total: len(entries)}
	fights := make([]NormalizedFight, 0, len(entries))

	for i, entry := range entries {
		record, err := NormalizeEntry(entry)
		if err != nil {
			stats.Skipped++
			if logger != nil {
				logger.Warn("skipping fight entry",
					"index", i,
					"matchup", entry.Matchup,
					"error", err,
				)
			}
			continue
		}

		fights = append(fights, NormalizedFight{Index: i, Record: record})
		stats.Processed++
	}

	return fights, stats
}

// ErrFightNotFound is returned by SelectFight when nothing matches.
var ErrFightNotFound = errors.New("fight not found")

// SelectFight picks a fight by its 1-based position in fights, as printed
// in listings, or by either fighter's name (case-insensitive).
func SelectFight(fights []NormalizedFight, selector string) (NormalizedFight, error) {
	selector = strings.TrimSpace(selector)
	if n, err := strconv.Atoi(selector); err == nil {
		if n < 1 || n > len(fights) {
			return NormalizedFight{}, fmt.Errorf("%w: choose 1-%d", ErrFightNotFound, len(fights))
		}
		return fights[n-1], nil
	}

	for _, f := range fights {
		if strings.EqualFold(f.Record.Fighter1.Name, selector) || strings.EqualFold(f.Record.Fighter2.Name, selector) {
			return f, nil
		}
	}
	return NormalizedFight{}, fmt.Errorf("%w: %q", ErrFightNotFound, selector)
}
