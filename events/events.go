package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSpending       EventType = "spending"
	EventTypeQueryCompleted EventType = "query_completed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// SpendingEvent is emitted once per priced completion call, after the ledger
// debit (if any) is durable
type SpendingEvent struct {
	UserID       int64
	Cost         int64 // nanodollars
	InputTokens  int64
	OutputTokens int64
	Model        string
	Unlimited    bool // true when the user is billed to their own API key
}

func (e SpendingEvent) Type() EventType {
	return EventTypeSpending
}

// QueryCompletedEvent is emitted when a conversation query has been answered
// and its node stored
type QueryCompletedEvent struct {
	UserID       int64
	GuildID      int64
	ChannelID    int64
	MessageID    int64
	Continuation bool
}

func (e QueryCompletedEvent) Type() EventType {
	return EventTypeQueryCompleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
