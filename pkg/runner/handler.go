package runner

import (
	"context"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
// Message and Log may be called from transport goroutines; implementations
// must be safe for concurrent use.
type IOHandler interface {
	// Input reads the next line from the user.
	Input(ctx context.Context) (string, error)

	// Message presents a transcript change.
	Message(ctx context.Context, change transcript.Change) error

	// Log presents an activity log entry.
	Log(ctx context.Context, entry domain.LogEntry) error

	// SystemOutput presents a meta-message (command results, status updates).
	// This is distinct from the conversation itself.
	SystemOutput(ctx context.Context, msg string) error

	// Confirm asks a yes/no question. Anything but an explicit yes is a no.
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ContentRenderer is a function that transforms markdown before output.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// StyleFunc decorates a log line for its severity.
type StyleFunc func(severity domain.Severity, text string) string
