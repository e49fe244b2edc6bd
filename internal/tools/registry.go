package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/STRATINT/fightintel/internal/models"
	"github.com/STRATINT/fightintel/internal/oracle"
)

// NotAvailable renders a missing descriptive field.
const NotAvailable = "N/A"

// Tool names.
const (
	StyleMatchupAnalysis   = "StyleMatchupAnalysis"
	StatisticalComparison  = "StatisticalComparison"
	FormAnalysis           = "FormAnalysis"
	MomentumAnalysis       = "MomentumAnalysis"
	MatchupAdvantages      = "MatchupAdvantages"
	StatisticalEdge        = "StatisticalEdge"
	StyleCounterAssessment = "StyleCounterAssessment"
)

// Definition declares one data-driven tool.
type Definition struct {
	Name        string
	Description string
	Template    string
	Fields      FieldFunc
}

// AnalysisTools are the tools of the analysis agent.
var AnalysisTools = []Definition{
	{StyleMatchupAnalysis, "Analyzes fighting style matchup between two fighters", styleMatchupTemplate, styleFields},
	{StatisticalComparison, "Compares key statistics between fighters", statisticalComparisonTemplate, comparisonFields},
	{FormAnalysis, "Analyzes fighters' recent performances", formAnalysisTemplate, formFields},
}

// PredictionTools are the tools of the prediction agent.
var PredictionTools = []Definition{
	{MomentumAnalysis, "Analyzes fighters' career momentum and trajectory", momentumTemplate, formFields},
	{MatchupAdvantages, "Identifies key matchup advantages between fighters", matchupAdvantagesTemplate, advantageFields},
	{StatisticalEdge, "Calculates statistical advantages and edge between fighters", statisticalEdgeTemplate, edgeFields},
	{StyleCounterAssessment, "Assesses how each fighter's style counters the opponent's approach", styleCounterTemplate, counterFields},
}

// Registry is an ordered, name-addressable set of tools.
type Registry struct {
	tools  []*TemplateTool
	byName map[string]*TemplateTool
}

// NewRegistry builds tools from defs, all answering through orc.
func NewRegistry(orc oracle.Oracle, defs []Definition) (*Registry, error) {
	r := &Registry{byName: make(map[string]*TemplateTool, len(defs))}
	for _, d := range defs {
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %s", d.Name)
		}
		t, err := NewTemplateTool(d.Name, d.Description, d.Template, d.Fields, orc)
		if err != nil {
			return nil, err
		}
		r.tools = append(r.tools, t)
		r.byName[d.Name] = t
	}
	return r, nil
}

// AnalysisRegistry returns the analysis tool set.
func AnalysisRegistry(orc oracle.Oracle) *Registry {
	return mustRegistry(orc, AnalysisTools)
}

// PredictionRegistry returns the prediction tool set.
func PredictionRegistry(orc oracle.Oracle) *Registry {
	return mustRegistry(orc, PredictionTools)
}

func mustRegistry(orc oracle.Oracle, defs []Definition) *Registry {
	r, err := NewRegistry(orc, defs)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (*TemplateTool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Tools returns the tools in declaration order.
func (r *Registry) Tools() []*TemplateTool {
	return append([]*TemplateTool(nil), r.tools...)
}

// Names returns tool names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.name
	}
	return names
}

// Describe lists "name: description" lines for the agent prompt.
func (r *Registry) Describe() string {
	lines := make([]string, len(r.tools))
	for i, t := range r.tools {
		lines[i] = t.name + ": " + t.description
	}
	return strings.Join(lines, "\n")
}

func styleFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"stance": text(f.Stance),
			"slpm":   number(f.Striking.StrikesLandedPerMin),
			"td":     number(f.Grappling.TakedownsPer15Min),
		}
	})
}

func comparisonFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"acc":    text(f.Striking.StrikingAccuracy),
			"def":    text(f.Striking.Defense),
			"td_acc": text(f.Grappling.TakedownAccuracy),
			"td_def": text(f.Grappling.TakedownDefense),
		}
	})
}

func formFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"record": text(f.Record),
			"recent": h.IndentedJSON(),
		}
	})
}

func advantageFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"stance": text(f.Stance),
			"slpm":   number(f.Striking.StrikesLandedPerMin),
			"td":     number(f.Grappling.TakedownsPer15Min),
			"sub":    number(f.Grappling.SubmissionsPer15Min),
		}
	})
}

func edgeFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"acc":    text(f.Striking.StrikingAccuracy),
			"def":    text(f.Striking.Defense),
			"slpm":   number(f.Striking.StrikesLandedPerMin),
			"sapm":   number(f.Striking.StrikesAbsorbedPerMin),
			"td_acc": text(f.Grappling.TakedownAccuracy),
			"td_def": text(f.Grappling.TakedownDefense),
		}
	})
}

func counterFields(m models.MatchupRecord) map[string]string {
	return perFighter(m, func(f models.FighterRecord, h models.FightHistory) map[string]string {
		return map[string]string{
			"name":   f.Name,
			"stance": text(f.Stance),
			"record": text(f.Record),
			"slpm":   number(f.Striking.StrikesLandedPerMin),
			"td":     number(f.Grappling.TakedownsPer15Min),
		}
	})
}

// perFighter prefixes each fighter's fields with fighter1_ and fighter2_.
func perFighter(m models.MatchupRecord, fn func(models.FighterRecord, models.FightHistory) map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range fn(m.Fighter1, m.RecentFights.Fighter1) {
		out["fighter1_"+k] = v
	}
	for k, v := range fn(m.Fighter2, m.RecentFights.Fighter2) {
		out["fighter2_"+k] = v
	}
	return out
}

func text(v *string) string {
	if v == nil {
		return NotAvailable
	}
	return *v
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
