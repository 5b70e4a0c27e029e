package event

import (
	"time"

	ics "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

const icsProductId = "-//Quhixcal//Quhixcal Calendar//EN"

// ExportICS renders anchors as an iCalendar feed: one all-day VEVENT per event,
// with an RRULE for recurring ones. stamp is used as DTSTAMP for events without CreatedAt.
func ExportICS(events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProductId)
	cal.SetMethod(ics.MethodPublish)

	for _, e := range events {
		date, err := ParseDate(e.Date)
		if err != nil {
			log.Errorf("skipping event %s in calendar export: %v", e.ID, err)
			continue
		}

		vevent := cal.AddEvent(e.ID)
		vevent.SetSummary(e.Title)
		vevent.SetAllDayStartAt(date)
		vevent.SetAllDayEndAt(date.AddDate(0, 0, 1))
		if e.CreatedAt.IsZero() {
			vevent.SetDtStampTime(stamp.UTC())
		} else {
			vevent.SetDtStampTime(e.CreatedAt.UTC())
		}
		if rule := e.Recurrence.RRule(); rule != "" {
			vevent.AddRrule(rule)
		}
	}

	return cal.Serialize()
}
