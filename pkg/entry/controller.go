package entry

import (
	"context"
	"errors"
	"sync"

	"github.com/quhixcal/quhixcal/internal/event_bus"
	"github.com/quhixcal/quhixcal/pkg/event"
	log "github.com/sirupsen/logrus"
)

type State int

const (
	Closed State = iota
	Open
	Submitting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

var (
	ErrNotOpen           = errors.New("the entry form is not open")
	ErrSubmissionPending = errors.New("an event is already being submitted")
)

// Draft is the event being composed. Recurrence is kept as the label the user picked.
type Draft struct {
	Title      string
	Date       string
	Recurrence string
}

func emptyDraft() Draft {
	return Draft{Recurrence: string(event.RecurrenceNone)}
}

func (d Draft) Event() event.Event {
	return event.Event{Title: d.Title, Date: d.Date, Recurrence: event.Recurrence(d.Recurrence)}
}

// Creator persists a new event and refreshes whatever shows it. *eventstore.Store is one.
type Creator interface {
	Create(ctx context.Context, candidate event.Event) error
}

// Controller drives the lifecycle of the new event form.
// At most one submission is in flight at a time. It is safe for concurrent use.
type Controller struct {
	creator  Creator
	eventBus *event_bus.EventBus

	mu      sync.Mutex
	state   State
	draft   Draft
	lastErr error
}

func NewController(creator Creator, eventBus *event_bus.EventBus) *Controller {
	return &Controller{
		creator:  creator,
		eventBus: eventBus,
		state:    Closed,
		draft:    emptyDraft(),
	}
}

// SelectDate opens the form for date. Anything typed into an earlier draft is discarded.
func (c *Controller) SelectDate(date string) error {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmissionPending
	}
	from := c.state
	c.draft = emptyDraft()
	c.draft.Date = date
	c.lastErr = nil
	c.state = Open
	c.mu.Unlock()

	c.publish(from, Open, date, nil)
	return nil
}

func (c *Controller) SetTitle(title string) error {
	return c.edit(func(d *Draft) { d.Title = title })
}

func (c *Controller) SetRecurrence(label string) error {
	return c.edit(func(d *Draft) { d.Recurrence = label })
}

func (c *Controller) SetDate(date string) error {
	return c.edit(func(d *Draft) { d.Date = date })
}

func (c *Controller) edit(change func(d *Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireOpen(); err != nil {
		return err
	}
	change(&c.draft)
	return nil
}

// Submit validates the draft and hands it to the Creator.
// On success the draft is reset and the form closes. On any failure the form stays open
// with the draft as it was, and the error is returned and kept as LastError.
func (c *Controller) Submit(ctx context.Context) error {
	candidate, err := c.begin()
	if err != nil {
		return err
	}
	err = c.creator.Create(ctx, candidate)
	c.finish(candidate, err)
	return err
}

// SubmitAsync is Submit with the Creator call on its own goroutine.
// The form is Submitting when SubmitAsync returns; done, if not nil, gets the outcome.
func (c *Controller) SubmitAsync(ctx context.Context, done func(error)) error {
	candidate, err := c.begin()
	if err != nil {
		return err
	}
	go func() {
		err := c.creator.Create(ctx, candidate)
		c.finish(candidate, err)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// Cancel closes the form and drops the draft. Closing a closed form does nothing.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return ErrSubmissionPending
	case Closed:
		c.mu.Unlock()
		return nil
	}
	date := c.draft.Date
	c.draft = emptyDraft()
	c.lastErr = nil
	c.state = Closed
	c.mu.Unlock()

	c.publish(Open, Closed, date, nil)
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// LastError is the error of the latest failed submit attempt, nil after a success or a new date.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) begin() (event.Event, error) {
	c.mu.Lock()
	if err := c.requireOpen(); err != nil {
		c.mu.Unlock()
		return event.Event{}, err
	}

	candidate := c.draft.Event()
	if err := validate(candidate); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		log.Debugf("draft for %s is not valid: %v", candidate.Date, err)
		return event.Event{}, err
	}
	c.lastErr = nil
	c.state = Submitting
	c.mu.Unlock()

	c.publish(Open, Submitting, candidate.Date, nil)
	return candidate, nil
}

func (c *Controller) finish(candidate event.Event, err error) {
	c.mu.Lock()
	if err != nil {
		c.lastErr = err
		c.state = Open
	} else {
		c.draft = emptyDraft()
		c.lastErr = nil
		c.state = Closed
	}
	to := c.state
	c.mu.Unlock()

	if err != nil {
		log.Warnf("submitting %q on %s failed: %v", candidate.Title, candidate.Date, err)
	}
	c.publish(Submitting, to, candidate.Date, err)
}

// requireOpen must be called with mu held.
func (c *Controller) requireOpen() error {
	switch c.state {
	case Open:
		return nil
	case Submitting:
		return ErrSubmissionPending
	}
	return ErrNotOpen
}

func validate(candidate event.Event) error {
	if err := event.Validate(candidate); err != nil {
		return err
	}
	_, err := event.ParseRecurrence(string(candidate.Recurrence))
	return err
}

func (c *Controller) publish(from, to State, date string, err error) {
	if c.eventBus == nil {
		return
	}
	payload := event_bus.EntryStateChanged{From: from.String(), To: to.String(), Date: date}
	if err != nil {
		payload.Error = err.Error()
	}
	if pubErr := c.eventBus.Publish(event_bus.NewEvent(context.Background(), event_bus.EntryStateChangedType, payload)); pubErr != nil {
		log.Errorf("failed to publish entry state change: %v", pubErr)
	}
}
