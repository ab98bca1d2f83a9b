package messaging

import "time"

// EventType identifies what happened
type EventType string

const (
	// EventLinkCreated is emitted when a link is created or its URL changes
	EventLinkCreated EventType = "link:created"
	// EventClickCreated is emitted when a click is recorded
	EventClickCreated EventType = "click:created"
	// EventOwnershipCreated is emitted when an ownership purchase succeeds
	EventOwnershipCreated EventType = "ownership:created"
	// EventOwnershipUpdated is emitted when an ownership's visuals change
	EventOwnershipUpdated EventType = "ownership:updated"
)

// Event is a notification fanned out to connected clients. The payload is the
// created record; consumers treat it as opaque JSON.
type Event struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}
