package forecaster

import (
	"encoding/json"
	"testing"

	"github.com/STRATINT/fightintel/internal/models"
)

func TestExtractWinner(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		winner string
	}{
		{
			name:   "more mentions wins",
			text:   "Pereira, Pereira, Pereira. Hill is tough but Pereira has the edge over Hill; Pereira by KO.",
			winner: "Pereira",
		},
		{
			name:   "tie goes to fighter2",
			text:   "Pereira vs Hill. Pereira strikes, Hill wrestles. Pereira or Hill?",
			winner: "Hill",
		},
		{
			name:   "case-insensitive counting",
			text:   "Pereira and Hill meet. HILL pressures, hill lands, Hill wins.",
			winner: "Hill",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Extract(tt.text, "Pereira", "Hill")
			if p.PredictedWinner == nil {
				t.Fatal("expected a winner")
			}
			if *p.PredictedWinner != tt.winner {
				t.Errorf("winner = %q, want %q", *p.PredictedWinner, tt.winner)
			}
		})
	}
}

func TestExtractFiveVersusTwo(t *testing.T) {
	text := "A A A A A B B"
	p := Extract(text, "A", "B")
	if p.PredictedWinner == nil || *p.PredictedWinner != "A" {
		t.Fatalf("expected A, got %v", p.PredictedWinner)
	}

	text = "A A A B B B"
	p = Extract(text, "A", "B")
	if p.PredictedWinner == nil || *p.PredictedWinner != "B" {
		t.Fatalf("expected tie to go to B, got %v", p.PredictedWinner)
	}
}

func TestExtractConfidence(t *testing.T) {
	tests := []struct {
		text string
		want models.Confidence
	}{
		{"I pick Pereira over Hill with High Confidence.", models.ConfidenceHigh},
		{"Pereira over Hill, low confidence.", models.ConfidenceLow},
		{"Pereira over Hill, high confidence on the KO but low confidence on the round.", models.ConfidenceHigh},
		{"Pereira over Hill.", models.ConfidenceMedium},
	}

	for _, tt := range tests {
		if got := Extract(tt.text, "Pereira", "Hill").Confidence; got != tt.want {
			t.Errorf("Extract(%q).Confidence = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestExtractGuardKeepsDefaults(t *testing.T) {
	tests := []string{
		"Pereira wins with high confidence.",
		"pereira beats hill with high confidence",
		"",
	}

	for _, text := range tests {
		p := Extract(text, "Pereira", "Hill")
		if p.PredictedWinner != nil {
			t.Errorf("Extract(%q) picked %q, expected no winner", text, *p.PredictedWinner)
		}
		if p.Confidence != models.ConfidenceMedium {
			t.Errorf("Extract(%q) confidence = %s, expected Medium", text, p.Confidence)
		}
	}

	if p := Extract("anything", "", "Hill"); p.PredictedWinner != nil {
		t.Error("blank fighter names must not pass the guard")
	}
}

func TestExtractLeavesListFieldsEmpty(t *testing.T) {
	p := Extract("Pereira beats Hill with high confidence. Pereira's reach decides it.", "Pereira", "Hill")

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"predicted_winner":"Pereira","confidence":"High","key_factors":[],"fighter1_path_to_victory":null,"fighter2_path_to_victory":null,"critical_variables":[]}`
	if string(raw) != want {
		t.Errorf("got %s\nwant %s", raw, want)
	}
}
