// Package events implements the synchronous publish/subscribe channel clients
// use to observe session and request lifecycle events.
package events

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/types"
)

// Type identifies a lifecycle event
type Type string

const (
	Initialized        Type = "initialized"
	Authenticated      Type = "authenticated"
	Logout             Type = "logout"
	Error              Type = "error"
	CredentialIssued   Type = "credential_issued"
	CredentialVerified Type = "credential_verified"
	DomainVerified     Type = "domain_verified"
	ExportCompleted    Type = "export_completed"
	ImportCompleted    Type = "import_completed"
)

var knownTypes = map[Type]bool{
	Initialized:        true,
	Authenticated:      true,
	Logout:             true,
	Error:              true,
	CredentialIssued:   true,
	CredentialVerified: true,
	DomainVerified:     true,
	ExportCompleted:    true,
	ImportCompleted:    true,
}

// ErrUnknownType is returned when subscribing to a type outside the closed set
var ErrUnknownType = errors.New("unknown event type")

// Valid reports whether t belongs to the closed set of event types
func Valid(t Type) bool {
	return knownTypes[t]
}

// Event is delivered to subscribers
type Event struct {
	Type      Type        `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorData is the payload of Error events
type ErrorData struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Message string `json:"message"`
	TraceID string `json:"requestId"`
}

// Handler receives events
type Handler func(Event)

// Subscription identifies one registered handler
type Subscription struct {
	Type Type
	id   uint64
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is a per-type subscriber registry. Subscriber slices are replaced on
// every mutation, so an emission iterates a snapshot taken under the read lock.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Type][]subscriber
	logger   types.Logger
}

// NewBus creates an empty bus. logger may be nil.
func NewBus(logger types.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		logger:   logger,
	}
}

// Subscribe registers handler for events of type t
func (b *Bus) Subscribe(t Type, handler Handler) (Subscription, error) {
	if !Valid(t) {
		return Subscription{}, errors.Wrapf(ErrUnknownType, "subscribe %q", t)
	}
	if handler == nil {
		return Subscription{}, errors.New("nil event handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	current := b.handlers[t]
	next := make([]subscriber, len(current), len(current)+1)
	copy(next, current)
	b.handlers[t] = append(next, subscriber{id: b.nextID, handler: handler})

	return Subscription{Type: t, id: b.nextID}, nil
}

// Unsubscribe removes a handler. It reports whether the subscription was found.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.handlers[sub.Type]
	for i, s := range current {
		if s.id != sub.id {
			continue
		}
		next := make([]subscriber, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(b.handlers, sub.Type)
		} else {
			b.handlers[sub.Type] = next
		}
		return true
	}
	return false
}

// Clear removes every handler of the given types, or of all types when none are given
func (b *Bus) Clear(types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(types) == 0 {
		b.handlers = make(map[Type][]subscriber)
		return
	}
	for _, t := range types {
		delete(b.handlers, t)
	}
}

// Count returns the number of handlers registered for t
func (b *Bus) Count(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[t])
}

// Emit delivers data to the current subscribers of t, synchronously and in
// registration order. A panicking handler does not stop delivery to the rest.
func (b *Bus) Emit(t Type, data interface{}) {
	b.mu.RLock()
	snapshot := b.handlers[t]
	b.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}

	evt := Event{
		Type:      t,
		Data:      data,
		Timestamp: time.Now(),
	}
	for _, s := range snapshot {
		b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("Event handler panicked",
				"event", string(evt.Type),
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.handler(evt)
}
