package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sender identifies who authored a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single transcript entry.
type Message struct {
	ID      string    `json:"id"`
	Sender  Sender    `json:"sender"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`

	// Markup is true when Content is sanitized HTML produced by the markup
	// renderer. Otherwise Content is literal text.
	Markup bool `json:"markup"`

	// Source is the markdown a Markup message was rendered from, kept for
	// renderers that do not display HTML. It is not safe to display as HTML.
	Source string `json:"source,omitempty"`

	// Placeholder marks the transient "thinking" entry owned by a Session.
	Placeholder bool `json:"placeholder,omitempty"`
}

// NewUserMessage creates a plain text message authored by the user.
func NewUserMessage(text string) Message {
	return newMessage(SenderUser, text, false)
}

// NewBotText creates a plain text bot message. The content is never
// interpreted as markup.
func NewBotText(text string) Message {
	return newMessage(SenderBot, text, false)
}

// NewBotMarkup creates a bot message whose content is already safe markup
// rendered from source.
func NewBotMarkup(safe, source string) Message {
	m := newMessage(SenderBot, safe, true)
	m.Source = source
	return m
}

func newMessage(sender Sender, content string, markup bool) Message {
	return Message{
		ID:      uuid.NewString(),
		Sender:  sender,
		Content: content,
		Markup:  markup,
		Time:    time.Now(),
	}
}

// Severity classifies activity log entries.
type Severity string

const (
	SeveritySystem Severity = "system"
	SeverityNode   Severity = "node"
	SeverityError  Severity = "error"
)

// LogEntry is a single activity log line.
type LogEntry struct {
	Text     string    `json:"text"`
	Severity Severity  `json:"severity"`
	Time     time.Time `json:"time"`
}

// NewLogEntry stamps a log line with the current time.
func NewLogEntry(severity Severity, text string) LogEntry {
	return LogEntry{Text: text, Severity: severity, Time: time.Now()}
}
