package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithDocuments enables the document commands.
func WithDocuments(docs Documents) Option {
	return func(r *Runner) {
		r.Documents = docs
	}
}

// WithInterruptSource adds a channel that cancels the streaming query on
// receive, alongside SIGINT. Useful for embedding and tests.
func WithInterruptSource(ch <-chan struct{}) Option {
	return func(r *Runner) {
		r.Interrupts = ch
	}
}
