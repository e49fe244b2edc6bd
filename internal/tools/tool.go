package tools

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/oracle"
)

const tracerName = "github.com/STRATINT/fightintel/internal/tools"

// Binding carries the record every tool in one agent run reads.
// It is built per top-level call and never mutated.
type Binding struct {
	record models.MatchupRecord
}

// Bind creates a Binding for record.
func Bind(record models.MatchupRecord) Binding {
	return Binding{record: record}
}

// Record returns the bound matchup.
func (b Binding) Record() models.MatchupRecord {
	return b.record
}

// FieldFunc extracts the template variables for one tool.
type FieldFunc func(models.MatchupRecord) map[string]string

// TemplateTool renders a prompt from the bound record and asks the oracle.
type TemplateTool struct {
	name        string
	description string
	tmpl        *template.Template
	fields      FieldFunc
	oracle      oracle.Oracle
}

// NewTemplateTool parses text and binds the tool to orc. Template variables
// missing from the field map are a render error, not an empty string.
func NewTemplateTool(name, description, text string, fields FieldFunc, orc oracle.Oracle) (*TemplateTool, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template for %s: %w", name, err)
	}
	return &TemplateTool{
		name:        name,
		description: description,
		tmpl:        tmpl,
		fields:      fields,
		oracle:      orc,
	}, nil
}

func (t *TemplateTool) Name() string { return t.name }

func (t *TemplateTool) Description() string { return t.description }

// Render produces the tool prompt for the bound record.
func (t *TemplateTool) Render(b Binding) (string, error) {
	var sb strings.Builder
	if err := t.tmpl.Execute(&sb, t.fields(b.record)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Invoke renders the prompt and returns the oracle's answer as the
// observation. The agent-supplied input is ignored; every tool reads the
// bound record. Failures come back as observation text, never as errors.
func (t *TemplateTool) Invoke(ctx context.Context, b Binding, input string) string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tool.invoke", trace.WithAttributes(
		attribute.String("tool.name", t.name),
		attribute.String("fight.matchup", b.record.Title()),
	))
	defer span.End()

	prompt, err := t.Render(b)
	if err != nil {
		span.RecordError(err)
		return fmt.Sprintf("tool %s failed: %v", t.name, err)
	}

	out, err := t.oracle.Generate(oracle.WithOperation(ctx, t.name), prompt)
	if err != nil {
		span.RecordError(err)
		return fmt.Sprintf("tool %s unavailable: %v", t.name, err)
	}
	return out
}
