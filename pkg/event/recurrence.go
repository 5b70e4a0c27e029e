package event

import (
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const DefaultMaxOccurrencesPerEvent = 5000

var ErrInvalidRange = errors.New("range end is before range start")

func (r Recurrence) frequency() (rrule.Frequency, bool) {
	switch r {
	case RecurrenceDaily:
		return rrule.DAILY, true
	case RecurrenceWeekly:
		return rrule.WEEKLY, true
	case RecurrenceMonthly:
		return rrule.MONTHLY, true
	default:
		return 0, false
	}
}

// RRule returns the iCalendar RRULE value for the recurrence, or "" for none.
func (r Recurrence) RRule() string {
	switch r {
	case RecurrenceDaily:
		return "FREQ=DAILY"
	case RecurrenceWeekly:
		return "FREQ=WEEKLY"
	case RecurrenceMonthly:
		return "FREQ=MONTHLY"
	default:
		return ""
	}
}

// Expand turns anchors into concrete occurrences inside [from, to], both inclusive dates.
// Occurrences keep the anchor ID and label; only Date changes. Monthly anchors on a day
// a month does not have (29th-31st) skip that month.
func Expand(events []Event, from, to time.Time, limit int) ([]Event, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	if limit <= 0 {
		limit = DefaultMaxOccurrencesPerEvent
	}
	from = truncateToDate(from)
	to = truncateToDate(to)

	occurrences := make([]Event, 0, len(events))
	for _, e := range events {
		anchor, err := ParseDate(e.Date)
		if err != nil {
			log.Errorf("skipping event %s during expansion: %v", e.ID, err)
			continue
		}

		freq, recurring := e.Recurrence.frequency()
		if !recurring {
			if !anchor.Before(from) && !anchor.After(to) {
				occurrences = append(occurrences, e)
			}
			continue
		}

		option := rrule.ROption{Freq: freq, Dtstart: firstCandidate(e.Recurrence, anchor, from)}
		if freq == rrule.MONTHLY {
			option.Bymonthday = []int{anchor.Day()}
		}
		rule, err := rrule.NewRRule(option)
		if err != nil {
			return nil, fmt.Errorf("could not build recurrence rule for event %s: %w", e.ID, err)
		}
		next := rule.Iterator()
		for count := 0; ; count++ {
			d, ok := next()
			if !ok || d.After(to) {
				break
			}
			if count == limit {
				log.Warnf("event %s has more than %d occurrences in %s..%s, truncating", e.ID, limit, FormatDate(from), FormatDate(to))
				break
			}
			occurrence := e
			occurrence.Date = FormatDate(d)
			occurrences = append(occurrences, occurrence)
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Date < occurrences[j].Date
	})
	return occurrences, nil
}

// firstCandidate moves the rule start from the anchor up to the window, keeping the
// weekday for weekly rules. Monthly rules start on the 1st and match on the anchor day.
func firstCandidate(r Recurrence, anchor, from time.Time) time.Time {
	if !anchor.Before(from) {
		return anchor
	}
	switch r {
	case RecurrenceDaily:
		return from
	case RecurrenceWeekly:
		days := (from.Unix() - anchor.Unix()) / 86400
		return anchor.AddDate(0, 0, int((days+6)/7*7))
	case RecurrenceMonthly:
		return time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return anchor
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
