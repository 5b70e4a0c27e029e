package event

import "strings"

// EventDTO is the JSON shape shared by the service and its clients.
// Recurrence is null for events that do not repeat.
type EventDTO struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title"`
	Date       string  `json:"date"`
	Recurrence *string `json:"recurrence"`
}

func EventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:         e.ID,
		Title:      e.Title,
		Date:       e.Date,
		Recurrence: e.Recurrence.Marker(),
	}
}

// DTOToEvent keeps unknown recurrence labels as they are; the label is opaque to readers.
func DTOToEvent(d EventDTO) Event {
	recurrence := RecurrenceNone
	if d.Recurrence != nil {
		if r, err := ParseRecurrence(*d.Recurrence); err == nil {
			recurrence = r
		} else {
			recurrence = Recurrence(strings.ToLower(strings.TrimSpace(*d.Recurrence)))
		}
	}
	return Event{
		ID:         d.ID,
		Title:      d.Title,
		Date:       d.Date,
		Recurrence: recurrence,
	}
}
