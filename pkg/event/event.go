package event

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO 8601 calendar date format used on the wire.
const DateLayout = "2006-01-02"

// MaxTitleLength is enforced by the service only.
const MaxTitleLength = 100

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

var recurrences = []Recurrence{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}

// ParseRecurrence accepts a recurrence label in any case. An empty label means RecurrenceNone.
func ParseRecurrence(label string) (Recurrence, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return RecurrenceNone, nil
	}
	for _, r := range recurrences {
		if string(r) == label {
			return r, nil
		}
	}
	return RecurrenceNone, &ValidationError{
		Field:   "recurrence",
		Message: fmt.Sprintf("unknown recurrence %q (expected daily, weekly, monthly or none)", label),
	}
}

func (r Recurrence) Valid() bool {
	for _, known := range recurrences {
		if r == known {
			return true
		}
	}
	return false
}

func (r Recurrence) IsRecurring() bool {
	return r != RecurrenceNone && r != ""
}

// Marker returns the recurrence as it travels on the wire: nil for a non-recurring event.
func (r Recurrence) Marker() *string {
	if !r.IsRecurring() {
		return nil
	}
	label := string(r)
	return &label
}

type Event struct {
	ID         string
	Title      string
	Date       string
	Recurrence Recurrence
	CreatedAt  time.Time
}

// Normalized returns a copy with surrounding whitespace removed and an empty recurrence set to none.
func (e Event) Normalized() Event {
	e.Title = strings.TrimSpace(e.Title)
	e.Date = strings.TrimSpace(e.Date)
	if e.Recurrence == "" {
		e.Recurrence = RecurrenceNone
	}
	return e
}

// ParseDate parses an ISO calendar date into UTC midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   "date",
			Message: fmt.Sprintf("date %q must be in YYYY-MM-DD format", date),
		}
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidationError reports a candidate event that must not be sent anywhere.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the fields a user must fill in before an event may be submitted.
func Validate(e Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(e.Date) == "" {
		return &ValidationError{Field: "date", Message: "date is required"}
	}
	return nil
}

// ValidateStrict is Validate plus the format checks applied before an event is persisted.
func ValidateStrict(e Event) error {
	if err := Validate(e); err != nil {
		return err
	}
	if utf8.RuneCountInString(strings.TrimSpace(e.Title)) > MaxTitleLength {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title is too long (%d characters tops)", MaxTitleLength),
		}
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if e.Recurrence != "" && !e.Recurrence.Valid() {
		return &ValidationError{
			Field:   "recurrence",
			Message: fmt.Sprintf("unknown recurrence %q", e.Recurrence),
		}
	}
	return nil
}
