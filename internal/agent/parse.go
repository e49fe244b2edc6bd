package agent

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnparsableAction is returned when a reply holds neither a final answer
// nor a well-formed tool call.
var ErrUnparsableAction = errors.New("unparsable agent action")

const (
	finalAnswerMarker = "Final Answer:"
	observationStop   = "\nObservation:"
)

var actionPattern = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)

// decision is one parsed oracle reply.
type decision struct {
	Thought string
	Final   string
	Tool    string
	Input   string
	Done    bool
}

// truncateReply drops anything the model hallucinated after the first
// observation marker.
func truncateReply(reply string) string {
	if idx := strings.Index(reply, observationStop); idx >= 0 {
		return reply[:idx]
	}
	return reply
}

func parseReply(reply string) (decision, error) {
	text := truncateReply(reply)
	m := actionPattern.FindStringSubmatchIndex(text)

	if idx := strings.Index(text, finalAnswerMarker); idx >= 0 {
		if m != nil {
			// a tool call and a conclusion in one reply is ambiguous
			return decision{Thought: thoughtOf(text[:min(idx, m[0])])}, ErrUnparsableAction
		}
		final := strings.TrimSpace(text[idx+len(finalAnswerMarker):])
		if final == "" {
			return decision{Thought: thoughtOf(text[:idx])}, ErrUnparsableAction
		}
		return decision{Thought: thoughtOf(text[:idx]), Final: final, Done: true}, nil
	}

	if m == nil {
		return decision{Thought: thoughtOf(text)}, ErrUnparsableAction
	}

	tool := strings.Trim(strings.TrimSpace(text[m[2]:m[3]]), "`\"'[]")
	input := strings.Trim(strings.TrimSpace(text[m[4]:m[5]]), "\"")
	if tool == "" {
		return decision{Thought: thoughtOf(text[:m[0]])}, ErrUnparsableAction
	}

	return decision{
		Thought: thoughtOf(text[:m[0]]),
		Tool:    tool,
		Input:   input,
	}, nil
}

func thoughtOf(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Thought:")
	return strings.TrimSpace(s)
}
