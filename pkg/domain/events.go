package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the wire discriminator carried in the "event" field of a stream payload.
type EventType string

const (
	EventNodeUpdate  EventType = "node_update"
	EventSystem      EventType = "system"
	EventFinalResult EventType = "final_result"
	EventError       EventType = "error"
)

// StreamEvent is the closed set of events the backend agent pushes.
// The concrete types are NodeUpdate, System, FinalResult, Error and Unknown.
type StreamEvent interface {
	Type() EventType
	// Terminal reports whether no further events are expected after this one.
	Terminal() bool
	isStreamEvent()
}

// NodeUpdate reports that an agent node finished a step.
type NodeUpdate struct {
	Node string
}

// System carries an informational line from the backend.
type System struct {
	Text string
}

// FinalResult carries the assistant's answer as markdown.
type FinalResult struct {
	Text string
}

// Error carries a backend-reported failure.
type Error struct {
	Text string
}

// Unknown is an event whose discriminator this client does not understand.
// It is ignored rather than treated as a failure.
type Unknown struct {
	Tag string
}

func (NodeUpdate) Type() EventType  { return EventNodeUpdate }
func (System) Type() EventType      { return EventSystem }
func (FinalResult) Type() EventType { return EventFinalResult }
func (Error) Type() EventType       { return EventError }
func (u Unknown) Type() EventType   { return EventType(u.Tag) }

func (NodeUpdate) Terminal() bool  { return false }
func (System) Terminal() bool      { return false }
func (FinalResult) Terminal() bool { return true }
func (Error) Terminal() bool       { return true }
func (Unknown) Terminal() bool     { return false }

func (NodeUpdate) isStreamEvent()  {}
func (System) isStreamEvent()      {}
func (FinalResult) isStreamEvent() {}
func (Error) isStreamEvent()       {}
func (Unknown) isStreamEvent()     {}

// wireEvent is the JSON shape of a single stream payload.
type wireEvent struct {
	Event   *string `json:"event"`
	Node    *string `json:"node,omitempty"`
	Content *string `json:"content,omitempty"`
}

// DecodeEvent parses one stream payload. Unknown discriminators yield an
// Unknown event; structurally invalid payloads yield ErrMalformedEvent.
func DecodeEvent(data []byte) (StreamEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if w.Event == nil || *w.Event == "" {
		return nil, fmt.Errorf("%w: missing event discriminator", ErrMalformedEvent)
	}

	switch EventType(*w.Event) {
	case EventNodeUpdate:
		if w.Node == nil || *w.Node == "" {
			return nil, fmt.Errorf("%w: %s without node", ErrMalformedEvent, *w.Event)
		}
		return NodeUpdate{Node: *w.Node}, nil
	case EventSystem:
		if w.Content == nil {
			return nil, fmt.Errorf("%w: %s without content", ErrMalformedEvent, *w.Event)
		}
		return System{Text: *w.Content}, nil
	case EventFinalResult:
		if w.Content == nil {
			return nil, fmt.Errorf("%w: %s without content", ErrMalformedEvent, *w.Event)
		}
		return FinalResult{Text: *w.Content}, nil
	case EventError:
		if w.Content == nil {
			return nil, fmt.Errorf("%w: %s without content", ErrMalformedEvent, *w.Event)
		}
		return Error{Text: *w.Content}, nil
	default:
		return Unknown{Tag: *w.Event}, nil
	}
}

// EncodeEvent renders an event in the wire format understood by DecodeEvent.
func EncodeEvent(ev StreamEvent) ([]byte, error) {
	tag := string(ev.Type())
	w := wireEvent{Event: &tag}
	switch e := ev.(type) {
	case NodeUpdate:
		w.Node = &e.Node
	case System:
		w.Content = &e.Text
	case FinalResult:
		w.Content = &e.Text
	case Error:
		w.Content = &e.Text
	case Unknown:
	default:
		return nil, fmt.Errorf("unsupported event type %T", ev)
	}
	return json.Marshal(w)
}

// OutcomeKind classifies how a Session ended.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeBackendError   OutcomeKind = "backend_error"
	OutcomeConnectionLost OutcomeKind = "connection_lost"
	OutcomeMalformed      OutcomeKind = "malformed"
	OutcomeTimeout        OutcomeKind = "timeout"
	OutcomeCancelled      OutcomeKind = "cancelled"
)

// Outcome is the terminal result of a Session.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

// SessionEvent describes a Session lifecycle transition for observers.
type SessionEvent struct {
	SessionID string
	Query     string
	Timestamp time.Time
	Duration  time.Duration // set on finalize
	Outcome   *Outcome      // set on finalize
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnSessionStart func(context.Context, *SessionEvent)
	OnStreamEvent  func(context.Context, *SessionEvent, StreamEvent)
	OnFinalize     func(context.Context, *SessionEvent)
}
