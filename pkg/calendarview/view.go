package calendarview

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/quhixcal/quhixcal/internal/event_bus"
	"github.com/quhixcal/quhixcal/pkg/event"
	log "github.com/sirupsen/logrus"
)

// EventSource provides the confirmed events to show.
type EventSource interface {
	Events() []event.Event
}

// DateSelector receives the date the user picked on the calendar.
type DateSelector interface {
	SelectDate(date string) error
}

// View binds a calendar surface to the event list and the entry form.
type View struct {
	source      EventSource
	selector    DateSelector
	theme       Theme
	unsubscribe []func()
}

// NewView wires the view to the bus. redraw, when not nil, runs after every list refresh
// and every entry form transition.
func NewView(source EventSource, selector DateSelector, theme Theme, eventBus *event_bus.EventBus, redraw func()) *View {
	v := &View{source: source, selector: selector, theme: theme}
	if eventBus == nil || redraw == nil {
		return v
	}

	v.unsubscribe = append(v.unsubscribe,
		event_bus.SubscribeTyped[event_bus.EventsRefreshed](
			eventBus,
			event_bus.EventsRefreshedType,
			func(e event_bus.EventT[event_bus.EventsRefreshed]) error {
				log.Debugf("redrawing after load %d (%d events)", e.Data.Sequence, e.Data.Count)
				redraw()
				return nil
			},
		),
		event_bus.SubscribeTyped[event_bus.EntryStateChanged](
			eventBus,
			event_bus.EntryStateChangedType,
			func(e event_bus.EventT[event_bus.EntryStateChanged]) error {
				log.Debugf("redrawing after entry form went %s -> %s", e.Data.From, e.Data.To)
				redraw()
				return nil
			},
		),
	)
	return v
}

func (v *View) Events() []event.Event {
	return v.source.Events()
}

func (v *View) OnDateSelect(date string) error {
	return v.selector.SelectDate(date)
}

// Close detaches the view from the bus.
func (v *View) Close() {
	for _, unsubscribe := range v.unsubscribe {
		unsubscribe()
	}
	v.unsubscribe = nil
}

// RenderMonth writes an agenda of the events dated in the given month, one line per event.
func (v *View) RenderMonth(w io.Writer, year int, month time.Month) error {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	inMonth := make([]event.Event, 0)
	for _, e := range v.Events() {
		date, err := event.ParseDate(e.Date)
		if err != nil || date.Before(first) || date.After(last) {
			continue
		}
		inMonth = append(inMonth, e)
	}
	sort.SliceStable(inMonth, func(i, j int) bool {
		return inMonth[i].Date < inMonth[j].Date
	})

	lines := []string{v.theme.Header(first.Format("January 2006"))}
	if len(inMonth) == 0 {
		lines = append(lines, v.theme.Line("  no events"))
	}
	for _, e := range inMonth {
		lines = append(lines, v.theme.Line(agendaLine(e, v.theme.Width)))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func agendaLine(e event.Event, width int) string {
	date, _ := event.ParseDate(e.Date)
	prefix := fmt.Sprintf("  %s %02d  ", date.Format("Mon"), date.Day())
	suffix := ""
	if e.Recurrence.IsRecurring() {
		suffix = " [" + string(e.Recurrence) + "]"
	}

	title := e.Title
	if width > 0 {
		room := width - len(prefix) - len(suffix)
		title = truncate(title, room)
	}
	return prefix + title + suffix
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimRight(string(runes[:max-1]), " ") + "…"
}
