package session

import (
	"sync"

	"github.com/google/uuid"
)

// EventType discriminates notifier events.
type EventType string

const (
	// EventConnectivity signals a connectivity-changed transition of the session.
	EventConnectivity EventType = "connectivity"
	// EventNotification carries a user-visible error notification.
	EventNotification EventType = "notification"
)

// Event is delivered to every subscriber of the notifier.
type Event struct {
	Type      EventType `json:"type"`
	Connected bool      `json:"connected,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Notifier publishes session events to subscribers. Consumers subscribe
// instead of polling the initialized flag. Subscriptions are app-scoped and
// survive session re-creation.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]chan Event
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{
		subscribers: make(map[uuid.UUID]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its id and event channel.
// Events are delivered best-effort: a subscriber that stops draining its
// channel loses events rather than blocking the publisher.
func (n *Notifier) Subscribe() (uuid.UUID, <-chan Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := uuid.New()
	ch := make(chan Event, 16)
	n.subscribers[id] = ch

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (n *Notifier) Unsubscribe(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ch, ok := n.subscribers[id]; ok {
		close(ch)
		delete(n.subscribers, id)
	}
}

// PublishConnectivity emits a connectivity-changed event
func (n *Notifier) PublishConnectivity(connected bool) {
	n.publish(Event{Type: EventConnectivity, Connected: connected})
}

// PublishNotification emits a user-visible notification
func (n *Notifier) PublishNotification(message string) {
	n.publish(Event{Type: EventNotification, Message: message})
}

func (n *Notifier) publish(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
