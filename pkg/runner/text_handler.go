package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/markup"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	pump     *linePump
	Writer   io.Writer
	Renderer ContentRenderer
	Style    StyleFunc

	mu sync.Mutex
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the markdown renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerStyle configures log line styling.
func WithTextHandlerStyle(style StyleFunc) TextHandlerOption {
	return func(h *TextHandler) {
		h.Style = style
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		pump:   newLinePump(r),
		Writer: w,
		Style: func(severity domain.Severity, text string) string {
			return text
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Input(ctx context.Context) (string, error) {
	// Only show prompt if context is not yet done
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	h.write("> ")
	return h.pump.next(ctx)
}

func (h *TextHandler) Message(ctx context.Context, change transcript.Change) error {
	msg := change.Message
	if msg.Sender == domain.SenderUser || change.Kind == transcript.ChangeRemove {
		return nil
	}

	if msg.Placeholder {
		h.writeln(h.Style(domain.SeveritySystem, "... "+strings.Trim(msg.Content, "_")))
		return nil
	}

	h.writeln(strings.TrimSpace(h.render(msg)))
	return nil
}

func (h *TextHandler) render(msg domain.Message) string {
	if !msg.Markup {
		return terminalSafe(msg.Content)
	}
	if h.Renderer != nil && msg.Source != "" {
		if out, err := h.Renderer(terminalSafe(msg.Source)); err == nil {
			return out
		}
	}
	return terminalSafe(markup.PlainText(msg.Content))
}

func (h *TextHandler) Log(ctx context.Context, entry domain.LogEntry) error {
	h.writeln(h.Style(entry.Severity, fmt.Sprintf("[%s] %s", entry.Severity, terminalSafe(entry.Text))))
	return nil
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.writeln("[System] " + msg)
	return nil
}

func (h *TextHandler) Confirm(ctx context.Context, prompt string) (bool, error) {
	h.write(prompt + " [y/N] ")
	answer, err := h.pump.next(ctx)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func (h *TextHandler) write(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprint(h.Writer, s)
}

func (h *TextHandler) writeln(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintln(h.Writer, s)
}
