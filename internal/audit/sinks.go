package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// MemorySink keeps events in process. Used in tests and the memory store profile.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns all events in emission order.
func (s *MemorySink) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

// ListByRecord returns the trail of one record.
func (s *MemorySink) ListByRecord(kind string, recordID int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Kind == kind && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit",
		"event_id", event.ID,
		"action", event.Action,
		"kind", event.Kind,
		"record_id", event.RecordID,
		"version", event.Version,
		"actor", event.Actor,
		"request_id", event.RequestID,
	)
	return nil
}

// FanOut writes each event to every sink and joins their errors.
type FanOut []Sink

func (f FanOut) Write(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
