package progress

import "sync"

// EventType defines the type of progress event
type EventType string

const (
	EventBegin    EventType = "progress_begin"
	EventProgress EventType = "progress"
	EventEnd      EventType = "progress_end"
)

// Event is published by a BusNotifier
type Event struct {
	Type     EventType `json:"type"`
	Source   string    `json:"source"`
	Fraction float64   `json:"fraction"`
}

// Bus fans progress events out to subscribers
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (b *Bus) Subscribe(ch chan<- Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, ch)
}

// Publish sends an event to all subscribers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// BusNotifier publishes every update of one source onto a Bus
type BusNotifier struct {
	bus    *Bus
	source string
}

// NewBusNotifier creates a notifier publishing under source
func NewBusNotifier(bus *Bus, source string) *BusNotifier {
	return &BusNotifier{bus: bus, source: source}
}

func (n *BusNotifier) Begin() {
	n.bus.Publish(Event{Type: EventBegin, Source: n.source})
}

func (n *BusNotifier) Report(fraction float64) {
	n.bus.Publish(Event{Type: EventProgress, Source: n.source, Fraction: clamp(fraction)})
}

func (n *BusNotifier) End() {
	n.bus.Publish(Event{Type: EventEnd, Source: n.source, Fraction: 1})
}
