package ingestion

import (
	"strings"

	"github.com/STRATINT/fightintel/internal/models"
)

var historyPrefixes = []string{"Win", "Loss"}

// ExtractRecentFights collects the Win*/Loss* columns for each fighter,
// keeping only present, non-empty cells in table order.
func ExtractRecentFights(table models.RawMatchupTable, fighter1, fighter2 string) models.RecentFights {
	keys := historyKeys(table)

	return models.RecentFights{
		Fighter1: historyFor(table, keys, fighter1),
		Fighter2: historyFor(table, keys, fighter2),
	}
}

func historyKeys(table models.RawMatchupTable) []string {
	var keys []string
	for _, attr := range table.Attributes() {
		for _, prefix := range historyPrefixes {
			if strings.HasPrefix(attr, prefix) {
				keys = append(keys, attr)
				break
			}
		}
	}
	return keys
}

func historyFor(table models.RawMatchupTable, keys []string, fighter string) models.FightHistory {
	history := models.NewFightHistory()
	for _, key := range keys {
		value := table.Value(key, fighter)
		if value.IsEmpty() {
			continue
		}
		result, _ := value.Text()
		history.Add(key, result)
	}
	return history
}
