package http

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/ports"
)

// EmitFunc delivers one event to the client. It fails once the client is gone.
type EmitFunc func(domain.StreamEvent) error

// Agent answers one query by emitting events, ending with a terminal one.
type Agent interface {
	Run(ctx context.Context, query string, emit EmitFunc) error
}

// AgentFunc adapts a function to Agent.
type AgentFunc func(ctx context.Context, query string, emit EmitFunc) error

func (f AgentFunc) Run(ctx context.Context, query string, emit EmitFunc) error {
	return f(ctx, query, emit)
}

// DefaultNodes is the pipeline ScriptedAgent reports by default.
var DefaultNodes = []string{"planner", "retriever", "writer"}

// ScriptedAgent is a deterministic agent for demos and tests:
// System("starting"), one NodeUpdate per node, then FinalResult.
type ScriptedAgent struct {
	Nodes []string
	// Delay is slept before every event.
	Delay time.Duration
	// Corpus, when set, is listed into the answer.
	Corpus ports.DocumentStore
	// Fail turns the terminal event into Error{Fail}.
	Fail string
}

// Run implements Agent.
func (a *ScriptedAgent) Run(ctx context.Context, query string, emit EmitFunc) error {
	nodes := a.Nodes
	if nodes == nil {
		nodes = DefaultNodes
	}

	step := func(ev domain.StreamEvent) error {
		if a.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.Delay):
			}
		}
		return emit(ev)
	}

	if err := step(domain.System{Text: "starting"}); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := step(domain.NodeUpdate{Node: n}); err != nil {
			return err
		}
	}

	if a.Fail != "" {
		return step(domain.Error{Text: a.Fail})
	}

	answer, err := a.answer(ctx, query)
	if err != nil {
		return step(domain.Error{Text: err.Error()})
	}
	return step(domain.FinalResult{Text: answer})
}

func (a *ScriptedAgent) answer(ctx context.Context, query string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You asked: **%s**\n", query)

	if a.Corpus == nil {
		return b.String(), nil
	}
	names, err := a.Corpus.List(ctx)
	if err != nil {
		return "", fmt.Errorf("document lookup failed: %w", err)
	}
	if len(names) == 0 {
		b.WriteString("\nNo documents are indexed, so this answer is not grounded in any source.\n")
		return b.String(), nil
	}
	b.WriteString("\nSources consulted:\n\n")
	for _, n := range names {
		fmt.Fprintf(&b, "- `%s`\n", n)
	}
	return b.String(), nil
}
