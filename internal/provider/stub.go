package provider

import (
	"context"
	"fmt"
	"sync"
)

// StubAdapter is a deterministic Adapter with no network dependency.
// It serves two roles: the low-risk fallback in production (always answers
// with a generic supportive line) and the scripted test double (canned
// results or errors in FIFO order, with all calls recorded).
type StubAdapter struct {
	id string

	mu     sync.Mutex
	queue  []stubReply
	Calls  []string
	downed bool
}

type stubReply struct {
	text string
	err  error
}

// NewStubAdapter creates a stub with no scripted replies: every Generate
// call succeeds deterministically.
func NewStubAdapter(id string) *StubAdapter {
	if id == "" {
		id = "stub"
	}
	return &StubAdapter{id: id}
}

// QueueText scripts the next successful reply.
func (s *StubAdapter) QueueText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, stubReply{text: text})
}

// QueueError scripts the next failure.
func (s *StubAdapter) QueueError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, stubReply{err: err})
}

// SetDown forces every call to fail with ErrUnavailable until reset.
func (s *StubAdapter) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downed = down
}

func (s *StubAdapter) ID() string { return s.id }

func (s *StubAdapter) Generate(_ context.Context, prompt string, opts GenerationOptions) (*Result, error) {
	if err := checkPrompt(prompt, Limits{}); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, prompt)

	if s.downed {
		return nil, &ErrUnavailable{}
	}

	text := fmt.Sprintf("Let's take this one step at a time. Re-read the problem and focus on what it is really asking. (offline guidance #%d)", len(s.Calls))
	if len(s.queue) > 0 {
		reply := s.queue[0]
		s.queue = s.queue[1:]
		if reply.err != nil {
			return nil, reply.err
		}
		text = reply.text
	}

	return &Result{
		Text:         text,
		Provider:     s.id,
		Usage:        Usage{InputTokens: len(prompt) / 4, OutputTokens: len(text) / 4, TotalTokens: (len(prompt) + len(text)) / 4},
		FinishReason: "end",
	}, nil
}

func (s *StubAdapter) HealthCheck(context.Context) Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Health{Provider: s.id, Healthy: !s.downed}
}

// CallCount returns the number of Generate calls made.
func (s *StubAdapter) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
