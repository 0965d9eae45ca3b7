// Package events provides the in-process event bus used for cross-module
// notifications (release lifecycle, asset uploads) and the dashboard activity
// feed.
package events

import (
	"context"
	"time"
)

// EventType identifies a class of event
type EventType string

const (
	// Release lifecycle events
	EventReleaseCreated   EventType = "release.created"
	EventReleaseSubmitted EventType = "release.submitted"
	EventReleaseApproved  EventType = "release.approved"
	EventReleaseRejected  EventType = "release.rejected"
	EventReleaseReopened  EventType = "release.reopened"
	EventReleaseTakenDown EventType = "release.takendown"

	// Asset events
	EventAssetUploaded EventType = "asset.uploaded"

	// Auth events
	EventUserSignedIn EventType = "auth.signed_in"
)

// Event is a single bus message
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Handler consumes events delivered by the bus
type Handler func(Event)

// EventBus delivers events to subscribers asynchronously
type EventBus interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// Publish enqueues an event for delivery. Never blocks the caller; events
	// are dropped with a warning when the buffer is full.
	Publish(event Event)

	// Subscribe registers a handler for one event type, or for all events
	// when eventType is "*". Returns an unsubscribe function.
	Subscribe(eventType EventType, handler Handler) func()
}
