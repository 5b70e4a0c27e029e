package eventstore

import (
	"context"
	"errors"
	"sync"

	"github.com/quhixcal/quhixcal/internal/event_bus"
	"github.com/quhixcal/quhixcal/pkg/event"
	log "github.com/sirupsen/logrus"
)

// Store holds the confirmed event list and is the only writer to the event service.
// It is safe for concurrent use.
type Store struct {
	client   Client
	eventBus *event_bus.EventBus

	mu      sync.Mutex
	events  []event.Event
	rng     Range
	issued  uint64
	applied uint64
}

func NewStore(client Client, eventBus *event_bus.EventBus) *Store {
	return &Store{
		client:   client,
		eventBus: eventBus,
		events:   []event.Event{},
	}
}

// LoadAll replaces the confirmed list with the service's current collection.
// On failure the confirmed list is left as it was and a *FetchError is returned.
// A response that arrives after the response of a later LoadAll is dropped.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	rng := s.rng
	s.mu.Unlock()

	fetched, err := s.client.ListEvents(ctx, rng)
	if err != nil {
		log.Errorf("failed to load events (load %d): %v", seq, err)
		return &FetchError{Err: err}
	}
	confirmed := displayable(fetched)

	s.mu.Lock()
	if seq < s.applied {
		applied := s.applied
		s.mu.Unlock()
		log.Debugf("dropping stale event list from load %d, load %d already applied", seq, applied)
		return nil
	}
	s.applied = seq
	s.events = confirmed
	s.mu.Unlock()

	log.Debugf("loaded %d events (load %d)", len(confirmed), seq)
	s.publishRefreshed(ctx, seq, len(confirmed), rng)
	return nil
}

// Create submits a new event and reloads the list once the service accepted it.
// Invalid candidates are rejected with *event.ValidationError before any request is made.
func (s *Store) Create(ctx context.Context, candidate event.Event) error {
	candidate = candidate.Normalized()
	candidate.ID = ""
	if err := event.Validate(candidate); err != nil {
		return err
	}
	recurrence, err := event.ParseRecurrence(string(candidate.Recurrence))
	if err != nil {
		return err
	}
	candidate.Recurrence = recurrence

	if err := s.client.CreateEvent(ctx, candidate); err != nil {
		log.Errorf("failed to create event %q on %s: %v", candidate.Title, candidate.Date, err)
		return &CreateError{Err: err}
	}
	log.Infof("created event %q on %s (%s)", candidate.Title, candidate.Date, candidate.Recurrence)

	if err := s.LoadAll(ctx); err != nil {
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			fetchErr.AfterCreate = true
			return fetchErr
		}
		return err
	}
	return nil
}

// Events returns a copy of the confirmed list.
func (s *Store) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]event.Event, len(s.events))
	copy(result, s.events)
	return result
}

// SetRange makes later loads ask for expanded occurrences in rng. The zero Range restores anchor events.
func (s *Store) SetRange(rng Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rng
}

func (s *Store) Range() Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng
}

func (s *Store) publishRefreshed(ctx context.Context, seq uint64, count int, rng Range) {
	if s.eventBus == nil {
		return
	}
	payload := event_bus.EventsRefreshed{Sequence: seq, Count: count}
	if !rng.IsZero() {
		payload.From = event.FormatDate(rng.From)
		payload.To = event.FormatDate(rng.To)
	}
	if err := event_bus.Publish(ctx, s.eventBus, event_bus.EventsRefreshedType, payload); err != nil {
		log.Errorf("failed to publish events refreshed event: %v", err)
	}
}

// displayable drops records the calendar cannot show: no title or a date that does not parse.
func displayable(events []event.Event) []event.Event {
	result := make([]event.Event, 0, len(events))
	for _, e := range events {
		if err := event.Validate(e); err != nil {
			log.Warnf("ignoring event %q from service: %v", e.ID, err)
			continue
		}
		if _, err := event.ParseDate(e.Date); err != nil {
			log.Warnf("ignoring event %q from service: %v", e.ID, err)
			continue
		}
		result = append(result, e)
	}
	return result
}
