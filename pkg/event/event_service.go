package event

import (
	"context"
	"fmt"
	"time"

	"github.com/quhixcal/quhixcal/internal/utils"
	log "github.com/sirupsen/logrus"
)

type EventService interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvents(ctx context.Context) ([]Event, error)
	// GetOccurrences expands recurring events into one entry per occurrence between from and to.
	GetOccurrences(ctx context.Context, from, to time.Time) ([]Event, error)
	ExportCalendar(ctx context.Context) (string, error)
}

type EventServiceImpl struct {
	repo           EventRepository
	clock          utils.Clock
	maxOccurrences int
}

func NewEventService(repo EventRepository, clock utils.Clock, maxOccurrences int) *EventServiceImpl {
	return &EventServiceImpl{repo: repo, clock: clock, maxOccurrences: maxOccurrences}
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	event = event.Normalized()
	event.ID = ""
	if err := ValidateStrict(event); err != nil {
		log.Debugf("rejected event: %v", err)
		return Event{}, err
	}
	event.CreatedAt = s.clock.Now()

	stored, err := s.repo.StoreEvent(ctx, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	log.Debugf("stored event %s on %s (%s)", stored.ID, stored.Date, stored.Recurrence)
	return stored, nil
}

func (s *EventServiceImpl) GetEvents(ctx context.Context) ([]Event, error) {
	events, err := s.repo.GetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	return events, nil
}

func (s *EventServiceImpl) GetOccurrences(ctx context.Context, from, to time.Time) ([]Event, error) {
	events, err := s.GetEvents(ctx)
	if err != nil {
		return nil, err
	}
	return Expand(events, from, to, s.maxOccurrences)
}

func (s *EventServiceImpl) ExportCalendar(ctx context.Context) (string, error) {
	events, err := s.GetEvents(ctx)
	if err != nil {
		return "", err
	}
	return ExportICS(events, s.clock.Now()), nil
}
