package event

import (
	"sync"

	"github.com/medstock/backend/internal/domain/shared"
)

// HandlerRegistry tracks which handler wants which ledger event. A
// handler registered without event types is a catch-all and sees every
// event published on the bus.
type HandlerRegistry struct {
	mu            sync.RWMutex
	subscriptions map[string][]shared.EventHandler
	catchAll      []shared.EventHandler
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		subscriptions: make(map[string][]shared.EventHandler),
	}
}

// Register subscribes a handler to the given event types, or to every
// event when none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.catchAll = append(r.catchAll, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.subscriptions[eventType] = append(r.subscriptions[eventType], handler)
	}
}

// Unregister drops a handler from every subscription it holds
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catchAll = filterOut(r.catchAll, handler)
	for eventType, handlers := range r.subscriptions {
		kept := filterOut(handlers, handler)
		if len(kept) == 0 {
			delete(r.subscriptions, eventType)
			continue
		}
		r.subscriptions[eventType] = kept
	}
}

// GetHandlers returns the handlers subscribed to the event type plus the
// catch-all handlers, in registration order.
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	typed := r.subscriptions[eventType]
	out := make([]shared.EventHandler, 0, len(typed)+len(r.catchAll))
	out = append(out, typed...)
	out = append(out, r.catchAll...)
	return out
}

// GetAllHandlers returns every registered handler once
func (r *HandlerRegistry) GetAllHandlers() []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[shared.EventHandler]bool)
	out := make([]shared.EventHandler, 0)
	for _, handler := range r.catchAll {
		if !seen[handler] {
			seen[handler] = true
			out = append(out, handler)
		}
	}
	for _, handlers := range r.subscriptions {
		for _, handler := range handlers {
			if !seen[handler] {
				seen[handler] = true
				out = append(out, handler)
			}
		}
	}
	return out
}

func filterOut(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	kept := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			kept = append(kept, h)
		}
	}
	return kept
}
