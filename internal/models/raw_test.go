package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRawValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input     string
		wantText  string
		wantOK    bool
		wantFloat float64
		floatOK   bool
	}{
		{input: `"5.12"`, wantText: "5.12", wantOK: true, wantFloat: 5.12, floatOK: true},
		{input: `7.5`, wantText: "7.5", wantOK: true, wantFloat: 7.5, floatOK: true},
		{input: `"Orthodox"`, wantText: "Orthodox", wantOK: true},
		{input: `null`},
		{input: `{"a": 1}`},
		{input: `true`, wantText: "true", wantOK: true},
		{input: `false`, wantText: "false", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var v RawValue
			if err := json.Unmarshal([]byte(tt.input), &v); err != nil {
				t.Fatalf("unmarshal returned error: %v", err)
			}

			text, ok := v.Text()
			if ok != tt.wantOK || text != tt.wantText {
				t.Errorf("Text() = (%q, %t), want (%q, %t)", text, ok, tt.wantText, tt.wantOK)
			}

			f, ok := v.Float()
			if ok != tt.floatOK || f != tt.wantFloat {
				t.Errorf("Float() = (%v, %t), want (%v, %t)", f, ok, tt.wantFloat, tt.floatOK)
			}
		})
	}
}

func TestRawMatchupTableKeepsAttributeOrder(t *testing.T) {
	input := `{"Weight": {"A": "Flyweight"}, "Win 2": {"A": "X"}, "Loss 1": {"B": "Y"}, "Stance": {"A": "Orthodox"}}`

	var table RawMatchupTable
	if err := json.Unmarshal([]byte(input), &table); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}

	want := []string{"Weight", "Win 2", "Loss 1", "Stance"}
	if got := table.Attributes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Attributes() = %v, want %v", got, want)
	}

	out, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	if string(out) != `{"Weight":{"A":"Flyweight"},"Win 2":{"A":"X"},"Loss 1":{"B":"Y"},"Stance":{"A":"Orthodox"}}` {
		t.Fatalf("unexpected marshalled table %s", out)
	}
}

func TestRawValueEmptiness(t *testing.T) {
	tests := []struct {
		name  string
		value RawValue
		want  bool
	}{
		{"absent", RawValue{}, true},
		{"blank string", StringValue(""), true},
		{"zero", NumberValue(0), true},
		{"false", BoolValue(false), true},
		{"true", BoolValue(true), false},
		{"text", StringValue("X (KO)"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestRawMatchupTableYAML(t *testing.T) {
	input := "Win 1:\n  A: X (KO)\nHeight:\n  A: 5' 11\"\n  B: 70\n"

	var table RawMatchupTable
	if err := yaml.Unmarshal([]byte(input), &table); err != nil {
		t.Fatalf("unmarshal returned error: %v", err)
	}

	if got := table.Attributes(); !reflect.DeepEqual(got, []string{"Win 1", "Height"}) {
		t.Fatalf("unexpected attribute order %v", got)
	}
	if text, _ := table.Value("Height", "B").Text(); text != "70" {
		t.Fatalf("expected numeric height to render as 70, got %q", text)
	}
	if !table.Value("Height", "C").IsAbsent() {
		t.Fatal("expected missing fighter to be absent")
	}
}

func TestFightHistoryIndentedJSON(t *testing.T) {
	history := NewFightHistory(
		HistoryEntry{Label: "Win 1", Result: "X (KO)"},
		HistoryEntry{Label: "Loss 1", Result: "Y (SUB)"},
	)

	want := "{\n  \"Win 1\": \"X (KO)\",\n  \"Loss 1\": \"Y (SUB)\"\n}"
	if got := history.IndentedJSON(); got != want {
		t.Fatalf("IndentedJSON() = %q, want %q", got, want)
	}
}

func TestNewPredictionDefaults(t *testing.T) {
	p := NewPrediction()

	if p.PredictedWinner != nil || p.Confidence != ConfidenceMedium {
		t.Fatalf("unexpected defaults %+v", p)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	want := `{"predicted_winner":null,"confidence":"Medium","key_factors":[],"fighter1_path_to_victory":null,"fighter2_path_to_victory":null,"critical_variables":[]}`
	if string(out) != want {
		t.Fatalf("unexpected JSON %s", out)
	}
}
