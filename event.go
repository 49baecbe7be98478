package dockstream

// Event is a sealed interface representing a decoded streaming chunk.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventContentDelta represents a text content delta.
type EventContentDelta struct {
	Text string
}

func (EventContentDelta) event() {}

// EventMetadata carries model information sent ahead of the content.
type EventMetadata struct {
	Model    string
	Provider string
}

func (EventMetadata) event() {}

// EventDone is the terminal chunk of a successful stream. It carries the
// usage and cost accounting for the exchange and, when the gateway sends
// one, a length hint for the assembled content.
type EventDone struct {
	Usage         Usage
	Cost          float64
	ContentLength int // 0 when the gateway sends no hint
}

func (EventDone) event() {}

// Interface compliance checks.
var (
	_ Event = EventContentDelta{}
	_ Event = EventMetadata{}
	_ Event = EventDone{}
)
