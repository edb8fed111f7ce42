package event

import (
	"sync"

	"github.com/bizdesk/backend/internal/domain/shared"
)

// Wildcard subscribes a handler to every event type
const Wildcard = "*"

type subscription struct {
	handler shared.EventHandler
	async   bool
}

// HandlerRegistry maps event types to subscribers in registration order
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	wildcard []subscription
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string][]subscription)}
}

// Register adds handler for eventTypes; none or "*" means all events
func (r *HandlerRegistry) Register(handler shared.EventHandler, async bool, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := subscription{handler: handler, async: async}
	if len(eventTypes) == 0 {
		r.wildcard = append(r.wildcard, sub)
		return
	}
	for _, t := range eventTypes {
		if t == Wildcard {
			r.wildcard = append(r.wildcard, sub)
			continue
		}
		r.handlers[t] = append(r.handlers[t], sub)
	}
}

func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wildcard = without(r.wildcard, handler)
	for t, subs := range r.handlers {
		if rest := without(subs, handler); len(rest) > 0 {
			r.handlers[t] = rest
		} else {
			delete(r.handlers, t)
		}
	}
}

// lookup returns type specific subscribers first, then wildcard ones
func (r *HandlerRegistry) lookup(eventType string) []subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()
	typed := r.handlers[eventType]
	out := make([]subscription, 0, len(typed)+len(r.wildcard))
	out = append(out, typed...)
	return append(out, r.wildcard...)
}

// Count returns how many handlers would receive eventType
func (r *HandlerRegistry) Count(eventType string) int {
	return len(r.lookup(eventType))
}

func without(subs []subscription, target shared.EventHandler) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.handler != target {
			out = append(out, s)
		}
	}
	return out
}
