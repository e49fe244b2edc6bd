package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/STRATINT/fightintel/internal/oracle"
	"github.com/STRATINT/fightintel/internal/tools"
)

const tracerName = "github.com/STRATINT/fightintel/internal/agent"

// StopReason explains why a run ended.
type StopReason string

const (
	StopConcluded         StopReason = "concluded"
	StopIterationCap      StopReason = "iteration_cap"
	StopParseFailures     StopReason = "parse_failures"
	StopCancelled         StopReason = "cancelled"
	StopOracleUnavailable StopReason = "oracle_unavailable"
)

// State is the loop position.
type State int

const (
	Thinking State = iota
	Acting
	Concluded
)

func (s State) String() string {
	switch s {
	case Thinking:
		return "thinking"
	case Acting:
		return "acting"
	case Concluded:
		return "concluded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NoConclusion is the final text of a run that produced nothing usable.
const NoConclusion = "Agent stopped before reaching a conclusion."

// InvalidToolCall is the observation recorded for an unparsable reply.
const InvalidToolCall = "invalid tool call, retry"

const (
	DefaultMaxIterations    = 8
	DefaultMaxParseFailures = 3
)

// Step is one Thinking/Acting turn of the transcript.
type Step struct {
	Thought     string `json:"thought,omitempty"`
	Action      string `json:"action,omitempty"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation"`
	Raw         string `json:"-"`
}

// Result is the outcome of Run. FinalText is never empty.
type Result struct {
	FinalText  string     `json:"final_text"`
	Transcript []Step     `json:"transcript"`
	StopReason StopReason `json:"stop_reason"`
	Iterations int        `json:"iterations"`
}

// Config bounds the loop. A zero MaxIterations takes the default; a negative
// MaxParseFailures does too, while zero ends the run on the first bad reply.
type Config struct {
	MaxIterations    int
	MaxParseFailures int
	// Preamble is placed before the ReAct instructions.
	Preamble string
}

// Observer receives tool and run outcomes, typically a metrics collector.
type Observer interface {
	ObserveTool(tool string)
	ObserveAgentRun(stopReason string, iterations int)
}

// Agent drives a ReAct loop over one tool registry.
type Agent struct {
	oracle   oracle.Oracle
	tools    *tools.Registry
	cfg      Config
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an Agent.
type Option func(*Agent)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(a *Agent) { a.observer = o }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates an agent.
func New(orc oracle.Oracle, registry *tools.Registry, cfg Config, opts ...Option) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxParseFailures < 0 {
		cfg.MaxParseFailures = DefaultMaxParseFailures
	}

	a := &Agent{
		oracle: orc,
		tools:  registry,
		cfg:    cfg,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run answers input with the tools bound to binding. It always terminates
// and always returns non-empty FinalText.
func (a *Agent) Run(ctx context.Context, binding tools.Binding, input string) Result {
	ctx, span := a.tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("fight.matchup", binding.Record().Title()),
		attribute.Int("agent.max_iterations", a.cfg.MaxIterations),
	))
	defer span.End()

	run := &runState{}
	result := a.loop(ctx, binding, input, run)

	span.SetAttributes(
		attribute.String("agent.stop_reason", string(result.StopReason)),
		attribute.Int("agent.iterations", result.Iterations),
	)
	if a.observer != nil {
		a.observer.ObserveAgentRun(string(result.StopReason), result.Iterations)
	}
	a.logger.Info("agent run finished",
		"matchup", binding.Record().Title(),
		"stop_reason", result.StopReason,
		"iterations", result.Iterations,
		"tool_calls", run.toolCalls,
	)
	return result
}

type runState struct {
	steps         []Step
	iterations    int
	parseFailures int
	toolCalls     int
	partial       string
}

func (r *runState) note(text string) {
	if t := strings.TrimSpace(text); t != "" {
		r.partial = t
	}
}

func (r *runState) stop(reason StopReason) Result {
	text := r.partial
	if text == "" {
		text = NoConclusion
	}
	return Result{
		FinalText:  text,
		Transcript: r.steps,
		StopReason: reason,
		Iterations: r.iterations,
	}
}

func (a *Agent) loop(ctx context.Context, binding tools.Binding, input string, run *runState) Result {
	state := Thinking
	var pending decision

	for {
		switch state {
		case Thinking:
			if ctx.Err() != nil {
				return run.stop(StopCancelled)
			}
			if run.iterations >= a.cfg.MaxIterations {
				return run.stop(StopIterationCap)
			}
			run.iterations++

			prompt, err := a.buildPrompt(input, run.steps)
			if err != nil {
				a.logger.Error("agent prompt render failed", "error", err)
				return run.stop(StopParseFailures)
			}

			reply, err := a.oracle.Generate(oracle.WithOperation(ctx, "agent_step"), prompt)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return run.stop(StopCancelled)
				}
				a.logger.Warn("agent oracle call failed", "iteration", run.iterations, "error", err)
				return run.stop(StopOracleUnavailable)
			}

			raw := truncateReply(reply)
			d, err := parseReply(raw)
			if err == nil && !d.Done {
				if _, ok := a.tools.Lookup(d.Tool); !ok {
					err = fmt.Errorf("%w: unknown tool %q", ErrUnparsableAction, d.Tool)
				}
			}

			if d.Thought != "" {
				run.note(d.Thought)
			} else {
				run.note(raw)
			}

			if err != nil {
				run.parseFailures++
				a.logger.Debug("agent reply not parsed",
					"iteration", run.iterations,
					"failures", run.parseFailures,
					"error", err,
				)
				run.steps = append(run.steps, Step{
					Thought:     d.Thought,
					Action:      d.Tool,
					ActionInput: d.Input,
					Observation: InvalidToolCall,
					Raw:         raw,
				})
				if run.parseFailures > a.cfg.MaxParseFailures {
					return run.stop(StopParseFailures)
				}
				continue
			}

			if d.Done {
				run.partial = d.Final
				state = Concluded
				continue
			}

			pending = d
			run.steps = append(run.steps, Step{
				Thought:     d.Thought,
				Action:      d.Tool,
				ActionInput: d.Input,
				Raw:         raw,
			})
			state = Acting

		case Acting:
			tool, _ := a.tools.Lookup(pending.Tool)
			obs := tool.Invoke(ctx, binding, pending.Input)
			run.toolCalls++
			if a.observer != nil {
				a.observer.ObserveTool(tool.Name())
			}
			a.logger.Debug("agent tool observation",
				"tool", tool.Name(),
				"iteration", run.iterations,
				"observation_chars", len(obs),
			)

			run.steps[len(run.steps)-1].Observation = obs
			run.note(obs)
			state = Thinking

		case Concluded:
			return Result{
				FinalText:  run.partial,
				Transcript: run.steps,
				StopReason: StopConcluded,
				Iterations: run.iterations,
			}
		}
	}
}
