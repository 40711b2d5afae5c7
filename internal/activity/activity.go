package activity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/crm-assistant/internal/core/events"
)

const DefaultCapacity = 500

type Kind string

const (
	KindCommand Kind = "command"
	KindDenied  Kind = "denied"
)

// Entry is one audited assistant action.
type Entry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"type"`
	UserID      int64     `json:"userId"`
	SessionID   string    `json:"sessionId,omitempty"`
	Command     string    `json:"command"`
	Description string    `json:"description"`
	At          time.Time `json:"timestamp"`
}

// Log keeps the latest entries in a fixed-size ring, newest overwriting oldest.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
	logger  *slog.Logger
}

func NewLog(capacity int, logger *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{entries: make([]Entry, capacity), logger: logger}
}

func (l *Log) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.next == 0 {
		l.full = true
	}
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	size := l.next
	if l.full {
		size = len(l.entries)
	}
	if n < 0 || n > size {
		n = size
	}
	out := make([]Entry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// CountSince reports how many held entries happened at or after t.
func (l *Log) CountSince(t time.Time) int {
	count := 0
	for _, e := range l.Recent(-1) {
		if !e.At.Before(t) {
			count++
		}
	}
	return count
}

// Subscribe audits dispatched and denied commands published on bus.
func (l *Log) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeCommandDispatched, l.onCommandDispatched)
	bus.Subscribe(events.EventTypePermissionDenied, l.onPermissionDenied)
}

func (l *Log) onCommandDispatched(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.CommandDispatchedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	description := fmt.Sprintf("%s (%s)", e.Command, e.ActionType)
	if e.Path != "" {
		description = fmt.Sprintf("%s -> %s", e.Command, e.Path)
	}
	l.logger.InfoContext(ctx, "audit: command dispatched",
		"user_id", e.UserID,
		"session_id", e.SessionID,
		"command", e.Command,
		"action_type", e.ActionType)
	l.Record(Entry{
		ID:          e.EventID(),
		Kind:        KindCommand,
		UserID:      e.UserID,
		SessionID:   e.SessionID,
		Command:     e.Command,
		Description: description,
		At:          e.OccurredAt(),
	})
	return nil
}

func (l *Log) onPermissionDenied(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PermissionDeniedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	l.logger.WarnContext(ctx, "audit: permission denied",
		"user_id", e.UserID,
		"session_id", e.SessionID,
		"command", e.Command,
		"reason", e.Reason)
	l.Record(Entry{
		ID:          e.EventID(),
		Kind:        KindDenied,
		UserID:      e.UserID,
		SessionID:   e.SessionID,
		Command:     e.Command,
		Description: "denied " + e.Command + ": " + e.Reason,
		At:          e.OccurredAt(),
	})
	return nil
}
