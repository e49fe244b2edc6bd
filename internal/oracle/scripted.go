package oracle

import (
	"context"
	"sync"
)

// Scripted replays canned responses in order and repeats the last one once
// the script runs out. It records every prompt it receives.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

// NewScripted creates an oracle that answers with responses in sequence.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

// NewFailing creates an oracle whose every call fails with err.
func NewFailing(err error) *Scripted {
	return &Scripted{err: err}
}

func (s *Scripted) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", nil
	}

	idx := len(s.prompts) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

// Prompts returns a copy of the prompts seen so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Calls returns the number of Generate calls.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}
