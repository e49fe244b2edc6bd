package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/STRATINT/fightintel/internal/agent"
	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/oracle"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entry(weight string, names ...string) models.RawFightEntry {
	table := models.NewRawMatchupTable()
	table.Set("Weight", names[0], models.StringValue(weight))
	return models.RawFightEntry{Matchup: names, TaleOfTheTape: table}
}

func newTestServer(orc oracle.Oracle) *Server {
	analyst := forecaster.NewAnalyst(orc, agent.Config{MaxIterations: 3, MaxParseFailures: 1},
		forecaster.WithLogger(quietLogger()))
	entries := []models.RawFightEntry{
		entry("Light Heavyweight", "Alex Pereira", "Jamahal Hill"),
		entry("Bantamweight", "Lonely Fighter"),
		entry("Lightweight", "Islam Makhachev", "Dustin Poirier"),
	}
	return New(analyst, entries, "test", quietLogger())
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestListFights(t *testing.T) {
	s := newTestServer(oracle.NewScripted())

	res, err := s.listFights(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("listFights returned error: %v", err)
	}

	var fights []FightSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &fights); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	want := []FightSummary{
		{Number: 1, Fighter1: "Alex Pereira", Fighter2: "Jamahal Hill", WeightClass: "Light Heavyweight"},
		{Number: 2, Fighter1: "Islam Makhachev", Fighter2: "Dustin Poirier", WeightClass: "Lightweight"},
	}
	if len(fights) != len(want) {
		t.Fatalf("got %d fights, want %d", len(fights), len(want))
	}
	for i := range want {
		if fights[i] != want[i] {
			t.Errorf("fight %d = %+v, want %+v", i, fights[i], want[i])
		}
	}
}

func TestAnalyzeFight(t *testing.T) {
	orc := oracle.NewScripted("Final Answer: Makhachev takes this on the mat.")
	s := newTestServer(orc)

	res, err := s.analyzeFight(context.Background(), call(map[string]interface{}{"fight": "2"}))
	if err != nil {
		t.Fatalf("analyzeFight returned error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Makhachev takes this on the mat." {
		t.Errorf("unexpected analysis %q", got)
	}
	if !strings.Contains(orc.Prompts()[0], "Analyze the upcoming fight between Islam Makhachev and Dustin Poirier") {
		t.Errorf("agent did not receive the selected fight")
	}
}

func TestPredictFightByName(t *testing.T) {
	s := newTestServer(oracle.NewScripted("Final Answer: Alex Pereira beats Jamahal Hill. Alex Pereira by knockout, high confidence."))

	res, err := s.predictFight(context.Background(), call(map[string]interface{}{"fight": "jamahal hill"}))
	if err != nil {
		t.Fatalf("predictFight returned error: %v", err)
	}

	var payload PredictionPayload
	if err := json.Unmarshal([]byte(resultText(t, res)), &payload); err != nil {
		t.Fatalf("decode prediction: %v", err)
	}
	if payload.PredictedWinner == nil || *payload.PredictedWinner != "Alex Pereira" {
		t.Errorf("unexpected winner %v", payload.PredictedWinner)
	}
	if payload.Confidence != models.ConfidenceHigh || payload.StopReason != string(agent.StopConcluded) {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestFightToolErrors(t *testing.T) {
	s := newTestServer(oracle.NewFailing(oracle.ErrUnavailable))

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing", nil, "fight is required"},
		{"out of range", map[string]interface{}{"fight": "9"}, "fight not found"},
		{"unavailable", map[string]interface{}{"fight": "1"}, "language model is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.analyzeFight(context.Background(), call(tt.args))
			if err != nil {
				t.Fatalf("analyzeFight returned error: %v", err)
			}
			if !res.IsError {
				t.Fatal("expected tool error result")
			}
			if got := resultText(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("error %q does not mention %q", got, tt.want)
			}
		})
	}
}
