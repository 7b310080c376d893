package battle

// EventKind identifies a change in a fighter's contact state.
type EventKind string

const (
	EventLanded EventKind = "landed"
	EventLeft   EventKind = "left_ground"
	EventDrop   EventKind = "drop_through"
)

// Event is emitted when a fighter's contact state changes.
type Event struct {
	Tick    int
	Fighter string
	Kind    EventKind
	// Platforms holds the ids involved: touched ids for landings, dropped
	// ids for drop-throughs.
	Platforms []int
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
