package ingestion

import (
	"errors"
	"math"
	"strings"

	"github.com/STRATINT/fightintel/internal/models"
)

// Attribute names used by the tale-of-the-tape scraper.
const (
	AttrStance                = "Stance"
	AttrRecord                = "Wins/Losses/Draws"
	AttrHeight                = "Height"
	AttrReach                 = "Reach"
	AttrDOB                   = "DOB"
	AttrStrikesLandedPerMin   = "Strikes Landed per Min. (SLpM)"
	AttrStrikesAbsorbedPerMin = "Strikes Absorbed per Min. (SApM)"
	AttrStrikingAccuracy      = "Striking Accuracy"
	AttrDefense               = "Defense"
	AttrTakedownsPer15Min     = "Takedowns Average/15 min."
	AttrTakedownAccuracy      = "Takedown Accuracy"
	AttrTakedownDefense       = "Takedown Defense"
	AttrSubmissionsPer15Min   = "Submission Average/15 min."
	AttrAverageFightTime      = "Average Fight Time"
	AttrWeight                = "Weight"
)

// ErrMalformedMatchup is returned when an entry does not name exactly two distinct fighters.
var ErrMalformedMatchup = errors.New("malformed matchup")

// Normalize converts a raw table into a MatchupRecord for the given pair.
// Missing or unparsable cells fall back to typed defaults; it never fails.
func Normalize(table models.RawMatchupTable, fighter1, fighter2 string) models.MatchupRecord {
	return models.MatchupRecord{
		Fighter1:     extractFighter(table, fighter1),
		Fighter2:     extractFighter(table, fighter2),
		WeightClass:  weightClass(table, fighter1),
		RecentFights: ExtractRecentFights(table, fighter1, fighter2),
	}
}

// NormalizeEntry validates the matchup pair before normalizing.
func NormalizeEntry(entry models.RawFightEntry) (models.MatchupRecord, error) {
	if len(entry.Matchup) != 2 {
		return models.MatchupRecord{}, ErrMalformedMatchup
	}

	fighter1, fighter2 := entry.Matchup[0], entry.Matchup[1]
	if strings.TrimSpace(fighter1) == "" || strings.TrimSpace(fighter2) == "" || fighter1 == fighter2 {
		return models.MatchupRecord{}, ErrMalformedMatchup
	}

	return Normalize(entry.TaleOfTheTape, fighter1, fighter2), nil
}

func extractFighter(table models.RawMatchupTable, name string) models.FighterRecord {
	return models.FighterRecord{
		Name:   name,
		Stance: text(table, AttrStance, name),
		Record: text(table, AttrRecord, name),
		Height: text(table, AttrHeight, name),
		Reach:  text(table, AttrReach, name),
		Age:    text(table, AttrDOB, name),
		Striking: models.StrikingStats{
			StrikesLandedPerMin:   number(table, AttrStrikesLandedPerMin, name),
			StrikesAbsorbedPerMin: number(table, AttrStrikesAbsorbedPerMin, name),
			StrikingAccuracy:      text(table, AttrStrikingAccuracy, name),
			Defense:               text(table, AttrDefense, name),
		},
		Grappling: models.GrapplingStats{
			TakedownsPer15Min:   number(table, AttrTakedownsPer15Min, name),
			TakedownAccuracy:    text(table, AttrTakedownAccuracy, name),
			TakedownDefense:     text(table, AttrTakedownDefense, name),
			SubmissionsPer15Min: number(table, AttrSubmissionsPer15Min, name),
		},
		FightMetrics: models.FightMetrics{
			AvgFightTime: text(table, AttrAverageFightTime, name),
		},
	}
}

func weightClass(table models.RawMatchupTable, fighter1 string) string {
	if s, ok := table.Value(AttrWeight, fighter1).Text(); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return models.UnknownWeightClass
}

func text(table models.RawMatchupTable, attribute, fighter string) *string {
	s, ok := table.Value(attribute, fighter).Text()
	if !ok {
		return nil
	}
	return &s
}

// number clamps to a finite, non-negative float.
func number(table models.RawMatchupTable, attribute, fighter string) float64 {
	f, ok := table.Value(attribute, fighter).Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
