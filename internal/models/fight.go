package models

import (
	"bytes"
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UnknownWeightClass is used when the table carries no weight for fighter1.
const UnknownWeightClass = "Unknown"

// StrikingStats holds per-fighter stand-up numbers.
type StrikingStats struct {
	StrikesLandedPerMin   float64 `json:"strikes_landed_per_min"`
	StrikesAbsorbedPerMin float64 `json:"strikes_absorbed_per_min"`
	StrikingAccuracy      *string `json:"striking_accuracy"`
	Defense               *string `json:"defense"`
}

// GrapplingStats holds per-fighter wrestling and submission numbers.
type GrapplingStats struct {
	TakedownsPer15Min   float64 `json:"takedowns_per_15min"`
	TakedownAccuracy    *string `json:"takedown_accuracy"`
	TakedownDefense     *string `json:"takedown_defense"`
	SubmissionsPer15Min float64 `json:"submissions_per_15min"`
}

// FightMetrics holds bout-level averages.
type FightMetrics struct {
	AvgFightTime *string `json:"avg_fight_time"`
}

// FighterRecord is the normalized view of one fighter.
type FighterRecord struct {
	Name         string         `json:"name"`
	Stance       *string        `json:"stance"`
	Record       *string        `json:"record"`
	Height       *string        `json:"height"`
	Reach        *string        `json:"reach"`
	Age          *string        `json:"age"`
	Striking     StrikingStats  `json:"striking"`
	Grappling    GrapplingStats `json:"grappling"`
	FightMetrics FightMetrics   `json:"fight_metrics"`
}

// HistoryEntry is a single event label and its result.
type HistoryEntry struct {
	Label  string `json:"label"`
	Result string `json:"result"`
}

// FightHistory maps event labels to results in discovery order.
type FightHistory struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewFightHistory builds a history from entries, keeping their order.
func NewFightHistory(entries ...HistoryEntry) FightHistory {
	h := FightHistory{m: orderedmap.New[string, string]()}
	for _, e := range entries {
		h.m.Set(e.Label, e.Result)
	}
	return h
}

// Add appends or replaces a result.
func (h *FightHistory) Add(label, result string) {
	if h.m == nil {
		h.m = orderedmap.New[string, string]()
	}
	h.m.Set(label, result)
}

// Len returns the number of recorded fights.
func (h FightHistory) Len() int {
	if h.m == nil {
		return 0
	}
	return h.m.Len()
}

// Entries returns the fights in order.
func (h FightHistory) Entries() []HistoryEntry {
	if h.m == nil {
		return []HistoryEntry{}
	}
	out := make([]HistoryEntry, 0, h.m.Len())
	for pair := h.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, HistoryEntry{Label: pair.Key, Result: pair.Value})
	}
	return out
}

// MarshalJSON writes the history as an ordered object.
func (h FightHistory) MarshalJSON() ([]byte, error) {
	if h.m == nil {
		return []byte("{}"), nil
	}
	return h.m.MarshalJSON()
}

// UnmarshalJSON reads an ordered object of label to result.
func (h *FightHistory) UnmarshalJSON(data []byte) error {
	h.m = orderedmap.New[string, string]()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return h.m.UnmarshalJSON(trimmed)
}

// IndentedJSON renders the history as two-space indented JSON.
func (h FightHistory) IndentedJSON() string {
	raw, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// RecentFights partitions history columns per fighter.
type RecentFights struct {
	Fighter1 FightHistory `json:"fighter1"`
	Fighter2 FightHistory `json:"fighter2"`
}

// MatchupRecord is the canonical per-bout record consumed by the tools.
type MatchupRecord struct {
	Fighter1     FighterRecord `json:"fighter1"`
	Fighter2     FighterRecord `json:"fighter2"`
	WeightClass  string        `json:"weight_class"`
	RecentFights RecentFights  `json:"recent_fights"`
}

// Title returns "fighter1 vs fighter2".
func (m MatchupRecord) Title() string {
	return m.Fighter1.Name + " vs " + m.Fighter2.Name
}

// Confidence is the prediction confidence tier.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Prediction is the structured outcome extracted from the agent's final text.
type Prediction struct {
	PredictedWinner       *string    `json:"predicted_winner"`
	Confidence            Confidence `json:"confidence"`
	KeyFactors            []string   `json:"key_factors"`
	Fighter1PathToVictory *string    `json:"fighter1_path_to_victory"`
	Fighter2PathToVictory *string    `json:"fighter2_path_to_victory"`
	CriticalVariables     []string   `json:"critical_variables"`
}

// NewPrediction returns a prediction with every field at its default.
func NewPrediction() Prediction {
	return Prediction{
		Confidence:        ConfidenceMedium,
		KeyFactors:        []string{},
		CriticalVariables: []string{},
	}
}

// AnalysisMode selects which agents a run executes.
type AnalysisMode string

const (
	ModeAnalyze AnalysisMode = "analyze"
	ModePredict AnalysisMode = "predict"
	ModeBoth    AnalysisMode = "both"
)

// ParseAnalysisMode validates a mode string.
func ParseAnalysisMode(raw string) (AnalysisMode, bool) {
	switch AnalysisMode(raw) {
	case ModeAnalyze, ModePredict, ModeBoth:
		return AnalysisMode(raw), true
	default:
		return "", false
	}
}

// Includes reports whether the mode runs the given single-agent mode.
func (m AnalysisMode) Includes(other AnalysisMode) bool {
	return m == other || m == ModeBoth
}

// AnalysisRun is a persisted record of one fight analysis.
type AnalysisRun struct {
	ID             string       `json:"id" db:"id"`
	Fighter1       string       `json:"fighter1" db:"fighter1"`
	Fighter2       string       `json:"fighter2" db:"fighter2"`
	WeightClass    string       `json:"weight_class" db:"weight_class"`
	Mode           AnalysisMode `json:"mode" db:"mode"`
	Analysis       string       `json:"analysis,omitempty" db:"analysis"`
	AnalysisStop   string       `json:"analysis_stop,omitempty" db:"analysis_stop"`
	FullAnalysis   string       `json:"full_analysis,omitempty" db:"full_analysis"`
	PredictionStop string       `json:"prediction_stop,omitempty" db:"prediction_stop"`
	Prediction     *Prediction  `json:"prediction,omitempty" db:"-"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// AnalysisRunQuery filters stored runs.
type AnalysisRunQuery struct {
	Fighter string
	Mode    AnalysisMode
	Limit   int
	Offset  int
}
