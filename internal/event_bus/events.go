package event_bus

const (
	EventsRefreshedType   EventType = "events.refreshed"
	EntryStateChangedType EventType = "entry.state.changed"
)

// EventsRefreshed is published after a listing replaced the confirmed event list.
type EventsRefreshed struct {
	// Sequence is the number of the LoadAll call whose response was applied.
	Sequence uint64
	Count    int
	// From and To are empty unless the list was loaded as expanded occurrences.
	From string
	To   string
}

type EntryStateChanged struct {
	From  string
	To    string
	Date  string
	Error string
}
