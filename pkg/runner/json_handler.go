package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aretw0/ragchat/pkg/domain"
	"github.com/aretw0/ragchat/pkg/transcript"
)

// Record types emitted by JSONHandler.
const (
	RecordMessage = "message"
	RecordLog     = "log"
	RecordSystem  = "system"
	RecordConfirm = "confirm"
)

// Record is one JSON line written by JSONHandler.
type Record struct {
	Type    string                `json:"type"`
	Change  transcript.ChangeKind `json:"change,omitempty"`
	Message *domain.Message       `json:"message,omitempty"`
	Entry   *domain.LogEntry      `json:"entry,omitempty"`
	Text    string                `json:"text,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
type JSONHandler struct {
	pump    *linePump
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		pump:    newLinePump(r),
		Encoder: json.NewEncoder(w),
	}
}

// Input reads a line. A JSON string is unquoted; anything else is taken verbatim.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.pump.next(ctx)
	if err != nil {
		return "", err
	}

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return val, nil
	}
	// Fallback: return raw text (e.g. if they just sent plain text)
	return text, nil
}

func (h *JSONHandler) Message(ctx context.Context, change transcript.Change) error {
	msg := change.Message
	return h.emit(Record{Type: RecordMessage, Change: change.Kind, Message: &msg})
}

func (h *JSONHandler) Log(ctx context.Context, entry domain.LogEntry) error {
	return h.emit(Record{Type: RecordLog, Entry: &entry})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.emit(Record{Type: RecordSystem, Text: msg})
}

// Confirm emits a confirm record and reads the answer: a JSON boolean or y/yes.
func (h *JSONHandler) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := h.emit(Record{Type: RecordConfirm, Text: prompt}); err != nil {
		return false, err
	}
	answer, err := h.Input(ctx)
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func (h *JSONHandler) emit(rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(rec)
}
