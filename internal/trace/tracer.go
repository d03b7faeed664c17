// Package trace assigns trace identifiers to dispatches and keeps a bounded
// registry of the dispatches currently in flight.
package trace

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit bounds the in-flight registry
const DefaultLimit = 1024

// Span tracks one logical dispatch across its attempts
type Span struct {
	TraceID   string
	Method    string
	Path      string
	StartedAt time.Time

	attempts   atomic.Int32
	lastStatus atomic.Int32
}

// RecordAttempt marks the start of an attempt
func (s *Span) RecordAttempt() int {
	return int(s.attempts.Add(1))
}

// RecordStatus stores the status code of the latest response
func (s *Span) RecordStatus(status int) {
	s.lastStatus.Store(int32(status))
}

// Attempts returns the number of attempts made so far
func (s *Span) Attempts() int {
	return int(s.attempts.Load())
}

// LastStatus returns the latest response status, zero when none was received
func (s *Span) LastStatus() int {
	return int(s.lastStatus.Load())
}

// Elapsed returns the time since the dispatch started
func (s *Span) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

// Snapshot is a copy of a span's state
type Snapshot struct {
	TraceID   string        `json:"traceId"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	StartedAt time.Time     `json:"startedAt"`
	Attempts  int           `json:"attempts"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Tracer hands out spans and registers them while they are in flight
type Tracer struct {
	mu       sync.RWMutex
	inflight map[string]*Span
	limit    int
	dropped  atomic.Int64
	newID    func() string
}

// NewTracer creates a tracer. A non-positive limit uses DefaultLimit.
func NewTracer(limit int) *Tracer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Tracer{
		inflight: make(map[string]*Span),
		limit:    limit,
		newID:    uuid.NewString,
	}
}

// Start creates a span with a fresh trace identifier. When the registry is
// full the span is still returned but not registered.
func (t *Tracer) Start(method, path string) *Span {
	span := &Span{
		TraceID:   t.newID(),
		Method:    method,
		Path:      path,
		StartedAt: time.Now(),
	}

	t.mu.Lock()
	if len(t.inflight) < t.limit {
		t.inflight[span.TraceID] = span
	} else {
		t.dropped.Add(1)
	}
	t.mu.Unlock()

	return span
}

// Finish removes the span from the registry and returns its duration
func (t *Tracer) Finish(span *Span) time.Duration {
	t.mu.Lock()
	delete(t.inflight, span.TraceID)
	t.mu.Unlock()
	return span.Elapsed()
}

// InFlight returns the number of registered spans
func (t *Tracer) InFlight() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.inflight)
}

// Dropped returns how many spans were not registered because the registry was full
func (t *Tracer) Dropped() int64 {
	return t.dropped.Load()
}

// Clear empties the registry. Dispatches still running are unaffected.
func (t *Tracer) Clear() {
	t.mu.Lock()
	t.inflight = make(map[string]*Span)
	t.mu.Unlock()
}

// Snapshots returns the registered spans ordered by start time
func (t *Tracer) Snapshots() []Snapshot {
	t.mu.RLock()
	out := make([]Snapshot, 0, len(t.inflight))
	for _, s := range t.inflight {
		out = append(out, Snapshot{
			TraceID:   s.TraceID,
			Method:    s.Method,
			Path:      s.Path,
			StartedAt: s.StartedAt,
			Attempts:  s.Attempts(),
			Elapsed:   s.Elapsed(),
		})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}
