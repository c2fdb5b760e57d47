package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLine       EventType = "line"
	EventModeChange EventType = "mode_change"
	EventJobStart   EventType = "job_start"
	EventJobDone    EventType = "job_done"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ConsoleID string    `json:"console_id,omitempty"`
}

// LineEvent is emitted for every completed line, gated or not.
type LineEvent struct {
	EventBase
	Kind CommandKind `json:"kind"`
	Mode Mode        `json:"mode"`
	// Gated is true when the line was discarded by Passthrough mode.
	Gated     bool `json:"gated,omitempty"`
	Malformed bool `json:"malformed,omitempty"`
	// Truncated is true when bytes were dropped at capacity.
	Truncated bool `json:"truncated,omitempty"`
}

// ModeEvent represents a mode transition.
type ModeEvent struct {
	EventBase
	From Mode `json:"from"`
	To   Mode `json:"to"`
}

// JobEvent represents an asynchronous collaborator call.
type JobEvent struct {
	EventBase
	Kind     CommandKind   `json:"kind"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// ConsoleHooks defines callbacks for console observability.
type ConsoleHooks struct {
	OnLine       func(context.Context, *LineEvent)
	OnModeChange func(context.Context, *ModeEvent)
	OnJobStart   func(context.Context, *JobEvent)
	OnJobDone    func(context.Context, *JobEvent)
}

// Merge returns hooks that call h first and then other.
func (h ConsoleHooks) Merge(other ConsoleHooks) ConsoleHooks {
	return ConsoleHooks{
		OnLine:       chain(h.OnLine, other.OnLine),
		OnModeChange: chain(h.OnModeChange, other.OnModeChange),
		OnJobStart:   chain(h.OnJobStart, other.OnJobStart),
		OnJobDone:    chain(h.OnJobDone, other.OnJobDone),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
