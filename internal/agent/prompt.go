package agent

import (
	"strings"
	"text/template"
)

var reactTemplate = template.Must(template.New("react").Parse(`{{if .Preamble}}{{.Preamble}}

{{end}}Answer the following questions as best you can. You have access to the following tools:

{{.Tools}}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.ToolNames}}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: {{.Input}}
Thought:{{.Scratchpad}}`))

type promptData struct {
	Preamble   string
	Tools      string
	ToolNames  string
	Input      string
	Scratchpad string
}

// scratchpad replays prior turns in ReAct form.
func scratchpad(steps []Step) string {
	var sb strings.Builder
	for _, s := range steps {
		sb.WriteString(s.Raw)
		sb.WriteString("\nObservation: ")
		sb.WriteString(s.Observation)
		sb.WriteString("\nThought: ")
	}
	return sb.String()
}

func (a *Agent) buildPrompt(input string, steps []Step) (string, error) {
	var sb strings.Builder
	err := reactTemplate.Execute(&sb, promptData{
		Preamble:   a.cfg.Preamble,
		Tools:      a.tools.Describe(),
		ToolNames:  strings.Join(a.tools.Names(), ", "),
		Input:      input,
		Scratchpad: scratchpad(steps),
	})
	return sb.String(), err
}
