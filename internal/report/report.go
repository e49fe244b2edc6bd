// Package report renders stored analysis runs as Markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/STRATINT/fightintel/internal/models"
)

// Undetermined is shown when no winner could be extracted.
const Undetermined = "Undetermined"

const concluded = "concluded"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders run as a Markdown document. Sections for agents the run
// did not execute are omitted.
func Markdown(run *models.AnalysisRun) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s vs %s\n\n", run.Fighter1, run.Fighter2)
	fmt.Fprintf(&sb, "**Weight Class:** %s  \n", run.WeightClass)
	fmt.Fprintf(&sb, "**Mode:** %s  \n", run.Mode)
	if !run.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "**Generated:** %s  \n", run.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if run.ID != "" {
		fmt.Fprintf(&sb, "**Run:** `%s`\n", run.ID)
	}

	if run.Mode.Includes(models.ModeAnalyze) {
		sb.WriteString("\n## Analysis Results\n\n")
		writeStopNote(&sb, run.AnalysisStop)
		sb.WriteString(strings.TrimSpace(run.Analysis))
		sb.WriteString("\n")
	}

	if run.Mode.Includes(models.ModePredict) && run.Prediction != nil {
		p := run.Prediction
		winner := Undetermined
		if p.PredictedWinner != nil {
			winner = *p.PredictedWinner
		}

		sb.WriteString("\n## Prediction Results\n\n")
		writeStopNote(&sb, run.PredictionStop)
		sb.WriteString("| Field | Value |\n")
		sb.WriteString("| --- | --- |\n")
		fmt.Fprintf(&sb, "| Predicted Winner | %s |\n", cell(winner))
		fmt.Fprintf(&sb, "| Confidence Level | %s |\n", cell(string(p.Confidence)))
		if len(p.KeyFactors) > 0 {
			fmt.Fprintf(&sb, "| Key Factors | %s |\n", cell(strings.Join(p.KeyFactors, "; ")))
		}
		if len(p.CriticalVariables) > 0 {
			fmt.Fprintf(&sb, "| Critical Variables | %s |\n", cell(strings.Join(p.CriticalVariables, "; ")))
		}

		sb.WriteString("\n## Full Analysis\n\n")
		sb.WriteString(strings.TrimSpace(run.FullAnalysis))
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeStopNote(sb *strings.Builder, stop string) {
	if stop != "" && stop != concluded {
		fmt.Fprintf(sb, "> Agent stopped early: `%s`\n\n", stop)
	}
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// RenderHTML converts GitHub-flavoured Markdown to an HTML fragment.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// Document renders run as a standalone HTML page.
func Document(run *models.AnalysisRun) (string, error) {
	body, err := RenderHTML(Markdown(run))
	if err != nil {
		return "", err
	}

	title := html.EscapeString(run.Fighter1 + " vs " + run.Fighter2)
	return "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>" + title +
		"</title>\n</head>\n<body>\n" + body + "</body>\n</html>\n", nil
}
