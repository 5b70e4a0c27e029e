package eventstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/quhixcal/quhixcal/pkg/event"
)

// ClientStub is an in-memory event service that records every call it receives.
type ClientStub struct {
	mu        sync.Mutex
	events    []event.Event
	nextId    int
	listErr   error
	createErr error

	ListCalls   int
	CreateCalls int
	Created     []event.Event
	Ranges      []Range
	// OnList, when set, runs before ListEvents answers.
	OnList func(call int)
}

func NewClientStub(events ...event.Event) *ClientStub {
	return &ClientStub{events: events}
}

func (c *ClientStub) ListEvents(ctx context.Context, rng Range) ([]event.Event, error) {
	c.mu.Lock()
	c.ListCalls++
	call := c.ListCalls
	c.Ranges = append(c.Ranges, rng)
	hook := c.OnList
	err := c.listErr
	result := make([]event.Event, len(c.events))
	copy(result, c.events)
	c.mu.Unlock()

	// the answer is fixed when the call arrives, whatever the hook changes afterwards
	if hook != nil {
		hook(call)
	}

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *ClientStub) CreateEvent(ctx context.Context, e event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.CreateCalls++
	c.Created = append(c.Created, e)
	if c.createErr != nil {
		return c.createErr
	}
	c.nextId++
	e.ID = fmt.Sprintf("event-%d", c.nextId)
	c.events = append(c.events, e)
	return nil
}

func (c *ClientStub) SetListError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listErr = err
}

func (c *ClientStub) SetCreateError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createErr = err
}

func (c *ClientStub) SetEvents(events ...event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = events
}

func (c *ClientStub) Calls() (list int, create int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ListCalls, c.CreateCalls
}
