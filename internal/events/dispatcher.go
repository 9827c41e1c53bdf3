package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher delivers events to subscribers off the request path.
// Handlers run once; a failing handler is logged and dropped, never
// retried, and never affects the primary operation's result.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish invokes handlers for the given event without blocking the caller.
func (d *inMemoryDispatcher) Publish(_ context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	go func() {
		// detached from the request context: secondary effects outlive it
		ctx := context.Background()
		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.logger.Warn("event handler failed",
					zap.String("event_type", string(event.Type)),
					zap.String("ticket_id", event.TicketID),
					zap.Error(err))
			}
		}
	}()
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
