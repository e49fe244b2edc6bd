// Package mcpserver exposes an event file's fights to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/STRATINT/fightintel/internal/forecaster"
	"github.com/STRATINT/fightintel/internal/ingestion"
	"github.com/STRATINT/fightintel/internal/models"
)

const (
	serverName = "fightintel"

	ListFightsTool   = "list_fights"
	AnalyzeFightTool = "analyze_fight"
	PredictFightTool = "predict_fight"
)

var emptySchema = json.RawMessage(`{"type":"object","properties":{}}`)

var fightSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "fight": {
      "type": "string",
      "description": "Fight number from list_fights (1-based) or either fighter's name"
    }
  },
  "required": ["fight"]
}`)

// FightSummary is one row of list_fights.
type FightSummary struct {
	Number      int    `json:"number"`
	Fighter1    string `json:"fighter1"`
	Fighter2    string `json:"fighter2"`
	WeightClass string `json:"weight_class"`
}

// PredictionPayload is the predict_fight result.
type PredictionPayload struct {
	PredictedWinner *string           `json:"predicted_winner"`
	Confidence      models.Confidence `json:"confidence"`
	StopReason      string            `json:"stop_reason"`
	FullAnalysis    string            `json:"full_analysis"`
}

// Server answers MCP tool calls over a fixed set of normalized fights.
type Server struct {
	analyst *forecaster.Analyst
	fights  []ingestion.NormalizedFight
	logger  *slog.Logger
	mcp     *mcpserver.MCPServer
}

// New normalizes entries and registers the tools.
func New(analyst *forecaster.Analyst, entries []models.RawFightEntry, version string, logger *slog.Logger) *Server {
	fights, stats := ingestion.ProcessBatch(entries, logger)
	logger.Info("fights loaded", "total", stats.Total, "processed", stats.Processed, "skipped", stats.Skipped)

	s := &Server{
		analyst: analyst,
		fights:  fights,
		logger:  logger,
		mcp: mcpserver.NewMCPServer(
			serverName,
			version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithLogging(),
			mcpserver.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewToolWithRawSchema(ListFightsTool,
		"List the fights on the loaded card with their numbers and weight classes.", emptySchema), s.listFights)
	s.mcp.AddTool(mcp.NewToolWithRawSchema(AnalyzeFightTool,
		"Run the analysis agent on one fight and return its written breakdown.", fightSchema), s.analyzeFight)
	s.mcp.AddTool(mcp.NewToolWithRawSchema(PredictFightTool,
		"Run the prediction agent on one fight and return the predicted winner and confidence.", fightSchema), s.predictFight)

	return s
}

// ServeStdio speaks MCP over in and out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return mcpserver.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) listFights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries := make([]FightSummary, len(s.fights))
	for i, f := range s.fights {
		summaries[i] = FightSummary{
			Number:      i + 1,
			Fighter1:    f.Record.Fighter1.Name,
			Fighter2:    f.Record.Fighter2.Name,
			WeightClass: f.Record.WeightClass,
		}
	}
	return jsonResult(summaries)
}

func (s *Server) analyzeFight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fight, errResult := s.resolve(request)
	if errResult != nil {
		return errResult, nil
	}

	res, err := s.analyst.Analyze(ctx, fight.Record)
	if err != nil {
		return abortedResult(fight, err), nil
	}
	return mcp.NewToolResultText(res.Analysis), nil
}

func (s *Server) predictFight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fight, errResult := s.resolve(request)
	if errResult != nil {
		return errResult, nil
	}

	res, err := s.analyst.Predict(ctx, fight.Record)
	if err != nil {
		return abortedResult(fight, err), nil
	}
	return jsonResult(PredictionPayload{
		PredictedWinner: res.Prediction.PredictedWinner,
		Confidence:      res.Prediction.Confidence,
		StopReason:      string(res.StopReason),
		FullAnalysis:    res.FullAnalysis,
	})
}

func (s *Server) resolve(request mcp.CallToolRequest) (ingestion.NormalizedFight, *mcp.CallToolResult) {
	selector := request.GetString("fight", "")
	if selector == "" {
		return ingestion.NormalizedFight{}, mcp.NewToolResultError("fight is required")
	}

	fight, err := ingestion.SelectFight(s.fights, selector)
	if err != nil {
		return ingestion.NormalizedFight{}, mcp.NewToolResultError(err.Error())
	}
	return fight, nil
}

func abortedResult(fight ingestion.NormalizedFight, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("analysis of %s failed: %v", fight.Record.Title(), err)
	if errors.Is(err, forecaster.ErrRunAborted) {
		msg = fmt.Sprintf("analysis of %s aborted: the language model is unavailable", fight.Record.Title())
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}
