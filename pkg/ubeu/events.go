package ubeu

import (
	"github.com/pkg/errors"
	"github.com/ubeu-platform/ubeu-go/internal/events"
)

// EventType identifies a lifecycle event
type EventType = events.Type

// Event is delivered to subscribers
type Event = events.Event

// EventHandler receives events. Handlers run synchronously on the emitting goroutine.
type EventHandler = events.Handler

// Subscription identifies a registered handler
type Subscription = events.Subscription

// ErrorData is the payload of EventError
type ErrorData = events.ErrorData

// Lifecycle events
const (
	EventInitialized        = events.Initialized
	EventAuthenticated      = events.Authenticated
	EventLogout             = events.Logout
	EventError              = events.Error
	EventCredentialIssued   = events.CredentialIssued
	EventCredentialVerified = events.CredentialVerified
	EventDomainVerified     = events.DomainVerified
	EventExportCompleted    = events.ExportCompleted
	EventImportCompleted    = events.ImportCompleted
)

// ErrUnknownEventType is returned by On for types outside the closed set
var ErrUnknownEventType = events.ErrUnknownType

// On subscribes handler to events of type t
func (c *Client) On(t EventType, handler EventHandler) (Subscription, error) {
	if c.events == nil {
		return Subscription{}, errors.New("client has no event bus")
	}
	return c.events.Subscribe(t, handler)
}

// Off removes a subscription. It reports whether the subscription was registered.
func (c *Client) Off(sub Subscription) bool {
	if c.events == nil {
		return false
	}
	return c.events.Unsubscribe(sub)
}

// RemoveAllListeners removes every handler of the given types, or of all
// types when none are given
func (c *Client) RemoveAllListeners(types ...EventType) {
	if c.events != nil {
		c.events.Clear(types...)
	}
}
