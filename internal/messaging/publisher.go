package messaging

import (
	"context"
)

// Publisher defines the interface for publishing application events.
// It replaces a process-wide event emitter: the instance is owned by the
// application and injected where needed, which keeps the core testable.
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish delivers an event to all current subscribers
	Publish(ctx context.Context, event *Event) error
	// Close releases the publisher's resources
	Close()
}

// Subscriber defines the interface for receiving application events
type Subscriber interface {
	// Subscribe registers a new consumer. The returned cancel function must
	// be called when the consumer goes away; the channel is closed then.
	Subscribe() (<-chan *Event, func())
}
