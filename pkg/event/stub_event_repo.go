package event

import (
	"context"
	"fmt"
	"sort"
)

type StubEventRepository struct {
	Events   []Event
	StoreErr error
	GetErr   error
	nextId   int
}

func (s *StubEventRepository) StoreEvent(ctx context.Context, event Event) (Event, error) {
	if s.StoreErr != nil {
		return Event{}, s.StoreErr
	}
	s.nextId++
	event.ID = fmt.Sprintf("event-%d", s.nextId)
	s.Events = append(s.Events, event)
	return event, nil
}

func (s *StubEventRepository) GetEvents(ctx context.Context) ([]Event, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})
	return events, nil
}

func (s *StubEventRepository) Cleanup() {
	s.Events = []Event{}
	s.StoreErr = nil
	s.GetErr = nil
	s.nextId = 0
}
