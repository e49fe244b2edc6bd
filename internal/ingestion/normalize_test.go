package ingestion

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/STRATINT/fightintel/internal/models"
)

const sampleTable = `{
	"Stance": {"Alex Pereira": "Orthodox", "Jamahal Hill": "Southpaw"},
	"Wins/Losses/Draws": {"Alex Pereira": "11-2-0", "Jamahal Hill": "12-1-0"},
	"Height": {"Alex Pereira": "6' 4\"", "Jamahal Hill": "6' 4\""},
	"Reach": {"Alex Pereira": "79\"", "Jamahal Hill": "79\""},
	"DOB": {"Alex Pereira": "Jul 07, 1987"},
	"Strikes Landed per Min. (SLpM)": {"Alex Pereira": "5.12", "Jamahal Hill": 7.05},
	"Strikes Absorbed per Min. (SApM)": {"Alex Pereira": "3.59", "Jamahal Hill": "--"},
	"Striking Accuracy": {"Alex Pereira": "62%", "Jamahal Hill": "54%"},
	"Defense": {"Alex Pereira": "51%"},
	"Takedowns Average/15 min.": {"Alex Pereira": "0.19", "Jamahal Hill": null},
	"Takedown Accuracy": {"Alex Pereira": "100%", "Jamahal Hill": "0%"},
	"Takedown Defense": {"Alex Pereira": "70%", "Jamahal Hill": "73%"},
	"Submission Average/15 min.": {"Alex Pereira": "0.2", "Jamahal Hill": "-1"},
	"Average Fight Time": {"Alex Pereira": "9:42", "Jamahal Hill": "7:51"},
	"Weight": {"Alex Pereira": "Light Heavyweight", "Jamahal Hill": "Heavyweight"},
	"Win 1": {"Alex Pereira": "Jiri Prochazka (KO)", "Jamahal Hill": "Glover Teixeira (UD)"},
	"Loss 1": {"Alex Pereira": "", "Jamahal Hill": "Jiri Prochazka (KO)"},
	"Odds": {"Alex Pereira": "-150", "Jamahal Hill": "+130"}
}`

func mustTable(t *testing.T, raw string) models.RawMatchupTable {
	t.Helper()
	var table models.RawMatchupTable
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		t.Fatalf("failed to decode table: %v", err)
	}
	return table
}

func strOrNil(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestNormalizeExtractsFields(t *testing.T) {
	table := mustTable(t, sampleTable)

	record := Normalize(table, "Alex Pereira", "Jamahal Hill")

	if record.Fighter1.Name != "Alex Pereira" || record.Fighter2.Name != "Jamahal Hill" {
		t.Fatalf("fighter order not preserved: %q vs %q", record.Fighter1.Name, record.Fighter2.Name)
	}
	if record.WeightClass != "Light Heavyweight" {
		t.Errorf("expected weight class from fighter1, got %q", record.WeightClass)
	}

	f1 := record.Fighter1
	if strOrNil(f1.Stance) != "Orthodox" {
		t.Errorf("unexpected stance %q", strOrNil(f1.Stance))
	}
	if strOrNil(f1.Record) != "11-2-0" {
		t.Errorf("unexpected record %q", strOrNil(f1.Record))
	}
	if strOrNil(f1.Age) != "Jul 07, 1987" {
		t.Errorf("unexpected age %q", strOrNil(f1.Age))
	}
	if f1.Striking.StrikesLandedPerMin != 5.12 {
		t.Errorf("expected SLpM 5.12, got %v", f1.Striking.StrikesLandedPerMin)
	}
	if f1.Striking.StrikesAbsorbedPerMin != 3.59 {
		t.Errorf("expected SApM 3.59, got %v", f1.Striking.StrikesAbsorbedPerMin)
	}
	if strOrNil(f1.Striking.Defense) != "51%" {
		t.Errorf("unexpected defense %q", strOrNil(f1.Striking.Defense))
	}
	if f1.Grappling.TakedownsPer15Min != 0.19 {
		t.Errorf("expected TD avg 0.19, got %v", f1.Grappling.TakedownsPer15Min)
	}
	if f1.Grappling.SubmissionsPer15Min != 0.2 {
		t.Errorf("expected sub avg 0.2, got %v", f1.Grappling.SubmissionsPer15Min)
	}
	if strOrNil(f1.FightMetrics.AvgFightTime) != "9:42" {
		t.Errorf("unexpected avg fight time %q", strOrNil(f1.FightMetrics.AvgFightTime))
	}

	f2 := record.Fighter2
	if f2.Striking.StrikesLandedPerMin != 7.05 {
		t.Errorf("expected numeric SLpM 7.05, got %v", f2.Striking.StrikesLandedPerMin)
	}
	if f2.Age != nil {
		t.Errorf("expected nil age for missing DOB, got %q", *f2.Age)
	}
	if f2.Striking.Defense != nil {
		t.Errorf("expected nil defense, got %q", *f2.Striking.Defense)
	}
}

func TestNormalizeNumericDefaults(t *testing.T) {
	table := mustTable(t, sampleTable)

	record := Normalize(table, "Alex Pereira", "Jamahal Hill")
	f2 := record.Fighter2

	tests := map[string]float64{
		"unparsable SApM":    f2.Striking.StrikesAbsorbedPerMin,
		"null takedowns":     f2.Grappling.TakedownsPer15Min,
		"negative subs":      f2.Grappling.SubmissionsPer15Min,
		"missing everything": Normalize(models.NewRawMatchupTable(), "A", "B").Fighter1.Striking.StrikesLandedPerMin,
	}

	for name, got := range tests {
		if got != 0 {
			t.Errorf("%s: expected 0.0, got %v", name, got)
		}
	}
}

func TestNormalizeMissingSLpMDefaultsToZero(t *testing.T) {
	table := mustTable(t, `{"Stance": {"A": "Orthodox", "B": "Southpaw"}}`)

	record := Normalize(table, "A", "B")

	if record.Fighter1.Striking.StrikesLandedPerMin != 0.0 {
		t.Fatalf("expected 0.0, got %v", record.Fighter1.Striking.StrikesLandedPerMin)
	}
}

func TestNormalizeWeightClassFallback(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  string
	}{
		{name: "no weight row", table: `{"Stance": {"A": "Orthodox"}}`, want: "Unknown"},
		{name: "weight only for fighter2", table: `{"Weight": {"B": "Flyweight"}}`, want: "Unknown"},
		{name: "blank weight", table: `{"Weight": {"A": "  "}}`, want: "Unknown"},
		{name: "fighter1 weight", table: `{"Weight": {"A": "Bantamweight", "B": "Flyweight"}}`, want: "Bantamweight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Normalize(mustTable(t, tt.table), "A", "B")
			if record.WeightClass != tt.want {
				t.Fatalf("weight class = %q, want %q", record.WeightClass, tt.want)
			}
		})
	}
}

func TestNormalizeTotality(t *testing.T) {
	tables := []string{
		`{}`,
		`[]`,
		`{"Strikes Landed per Min. (SLpM)": "oops"}`,
		`{"Strikes Landed per Min. (SLpM)": {"A": "NaN", "B": "Inf"}}`,
		`{"Takedowns Average/15 min.": {"A": true, "B": {"nested": 1}}}`,
		`{"Stance": {"A": 12}, "Weight": {"A": 155}}`,
	}

	for _, raw := range tables {
		record := Normalize(mustTable(t, raw), "A", "B")

		for _, f := range []models.FighterRecord{record.Fighter1, record.Fighter2} {
			nums := []float64{
				f.Striking.StrikesLandedPerMin,
				f.Striking.StrikesAbsorbedPerMin,
				f.Grappling.TakedownsPer15Min,
				f.Grappling.SubmissionsPer15Min,
			}
			for _, n := range nums {
				if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
					t.Fatalf("table %s produced invalid numeric %v", raw, n)
				}
			}
		}
	}
}

func TestNormalizeStringifiesNumericDescriptiveCells(t *testing.T) {
	record := Normalize(mustTable(t, `{"Stance": {"A": 12}, "Weight": {"A": 155}}`), "A", "B")

	if strOrNil(record.Fighter1.Stance) != "12" {
		t.Errorf("expected stance %q, got %q", "12", strOrNil(record.Fighter1.Stance))
	}
	if record.WeightClass != "155" {
		t.Errorf("expected weight class %q, got %q", "155", record.WeightClass)
	}
}

func TestNormalizeEntryRejectsMalformedPairs(t *testing.T) {
	tests := map[string][]string{
		"empty":     nil,
		"single":    {"A"},
		"three":     {"A", "B", "C"},
		"blank":     {"A", " "},
		"duplicate": {"A", "A"},
	}

	for name, matchup := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeEntry(models.RawFightEntry{Matchup: matchup})
			if err != ErrMalformedMatchup {
				t.Fatalf("expected ErrMalformedMatchup, got %v", err)
			}
		})
	}
}
