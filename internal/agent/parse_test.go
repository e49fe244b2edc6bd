package agent

import (
	"errors"
	"testing"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    decision
		wantErr bool
	}{
		{
			name:  "final answer",
			reply: " I now know the final answer\nFinal Answer: Hill by decision",
			want:  decision{Thought: "I now know the final answer", Final: "Hill by decision", Done: true},
		},
		{
			name:  "tool call",
			reply: "Thought: check stats\nAction: StatisticalComparison\nAction Input: \"Pereira vs Hill\"",
			want:  decision{Thought: "check stats", Tool: "StatisticalComparison", Input: "Pereira vs Hill"},
		},
		{
			name:  "quoted tool name",
			reply: "Action: `FormAnalysis`\nAction Input: form",
			want:  decision{Tool: "FormAnalysis", Input: "form"},
		},
		{
			name:  "numbered action",
			reply: "Action 1: FormAnalysis\nAction 1 Input: form",
			want:  decision{Tool: "FormAnalysis", Input: "form"},
		},
		{
			name:    "action without input",
			reply:   "Thought: hmm\nAction: FormAnalysis",
			want:    decision{Thought: "hmm\nAction: FormAnalysis"},
			wantErr: true,
		},
		{
			name:    "empty final answer",
			reply:   "Final Answer:   ",
			want:    decision{},
			wantErr: true,
		},
		{
			name:    "prose",
			reply:   "Both fighters are dangerous.",
			want:    decision{Thought: "Both fighters are dangerous."},
			wantErr: true,
		},
		{
			name:    "action and final answer",
			reply:   "Thought: compare\nAction: FormAnalysis\nAction Input: x\nFinal Answer: A wins",
			want:    decision{Thought: "compare"},
			wantErr: true,
		},
		{
			name:    "final answer before action",
			reply:   "Final Answer: A wins\nAction: FormAnalysis\nAction Input: x",
			want:    decision{},
			wantErr: true,
		},
		{
			name:  "observation is cut",
			reply: "Action: FormAnalysis\nAction Input: x\nObservation: fake\nFinal Answer: fake",
			want:  decision{Tool: "FormAnalysis", Input: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReply(tt.reply)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnparsableAction) {
				t.Errorf("expected ErrUnparsableAction, got %v", err)
			}
			if got != tt.want {
				t.Errorf("parseReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
