package event_bus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType names a kind of notification, e.g. "events.refreshed".
type EventType string

// Event is the envelope handed to generic subscribers.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent wraps data for publishing. The timestamp is taken now.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context is the publisher's context, or context.Background when none was given.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is the envelope handed to typed subscribers.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type handler func(Event) error

type subscription struct {
	id uint64
	h  handler
}

// EventBus dispatches events synchronously, in subscription order, on the publisher's goroutine.
// Subscribing and publishing are safe from any goroutine.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType]map[uint64]handler
	nextID      uint64
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType]map[uint64]handler),
	}
}

// Subscribe registers h for eventType and returns a function that removes it again.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	if eb.subscribers[eventType] == nil {
		eb.subscribers[eventType] = make(map[uint64]handler)
	}
	eb.subscribers[eventType][id] = h
	eb.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			eb.mu.Lock()
			defer eb.mu.Unlock()
			handlers := eb.subscribers[eventType]
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(eb.subscribers, eventType)
			}
		})
	}
}

// SubscribeTyped registers a handler for payloads of type T. Events of the same type
// carrying another payload type are skipped. It is a function because methods cannot
// have type parameters.
//
//	event_bus.SubscribeTyped[event_bus.EventsRefreshed](bus, event_bus.EventsRefreshedType,
//	    func(e event_bus.EventT[event_bus.EventsRefreshed]) error {
//	        log.Debugf("%d events after load %d", e.Data.Count, e.Data.Sequence)
//	        return nil
//	    })
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("EventBus: skipping %s for typed handler, expected %T, got %T", eventType, *new(T), e.Data)
			return nil
		}
		return h(EventT[T]{ctx: e.ctx, Type: e.Type, Timestamp: e.Timestamp, Data: payload})
	})
}

// Publish runs every handler subscribed to e.Type. A failing or panicking handler does not
// stop the others; their errors are joined into the returned error. Publishing stops early
// once the event's context is done.
func (eb *EventBus) Publish(e Event) error {
	if err := e.Context().Err(); err != nil {
		return fmt.Errorf("event %s not published: %w", e.Type, err)
	}

	eb.mu.RLock()
	subscriptions := make([]subscription, 0, len(eb.subscribers[e.Type]))
	for id, h := range eb.subscribers[e.Type] {
		subscriptions = append(subscriptions, subscription{id: id, h: h})
	}
	eb.mu.RUnlock()
	sort.Slice(subscriptions, func(i, j int) bool { return subscriptions[i].id < subscriptions[j].id })

	var errs []error
	for _, s := range subscriptions {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, fmt.Errorf("event %s interrupted: %w", e.Type, err))
			break
		}
		if err := invoke(s, e); err != nil {
			log.Errorf("EventBus: handler %d failed for %s: %v", s.id, e.Type, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func invoke(s subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %d panicked on %s: %v", s.id, e.Type, r)
		}
	}()
	return s.h(e)
}

// Publish wraps data in an envelope and publishes it on eb.
func Publish[T any](ctx context.Context, eb *EventBus, eventType EventType, data T) error {
	return eb.Publish(NewEvent(ctx, eventType, data))
}
