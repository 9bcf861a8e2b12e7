package console

import (
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/surface"
)

// EventKind identifies a console event.
type EventKind int

const (
	// EventColorSpan announces a colored span of freshly written output.
	EventColorSpan EventKind = iota

	// EventCleared announces that the console was cleared.
	EventCleared

	// EventInputLine announces a completed, non-echoed input line.
	EventInputLine
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventColorSpan:
		return "color-span"
	case EventCleared:
		return "cleared"
	case EventInputLine:
		return "input-line"
	default:
		return "unknown"
	}
}

// Event is a console notification. Span and the colors are meaningful for
// EventColorSpan only; Line is meaningful for EventInputLine only. Events
// are ephemeral: the console publishes each one once and retains nothing.
type Event struct {
	Kind       EventKind
	Span       surface.Span
	Foreground *colorful.Color
	Background *colorful.Color
	Line       PendingInputLine
}

// Observer receives console events.
type Observer func(Event)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans console events out to observers. Delivery is synchronous
// on the goroutine that published the event and always happens outside
// the registry lock.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for all console events.
func (n *Notifier) Subscribe(obs Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = obs

	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// Notify delivers an event to every observer.
func (n *Notifier) Notify(ev Event) {
	n.mu.RLock()
	obs := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		obs = append(obs, o)
	}
	n.mu.RUnlock()

	for _, o := range obs {
		o(ev)
	}
}

// NotifyColorSpan publishes a color span event.
func (n *Notifier) NotifyColorSpan(span surface.Span, fg, bg *colorful.Color) {
	n.Notify(Event{Kind: EventColorSpan, Span: span, Foreground: fg, Background: bg})
}

// NotifyCleared publishes a cleared event.
func (n *Notifier) NotifyCleared() {
	n.Notify(Event{Kind: EventCleared})
}

// NotifyInputLine publishes a completed input line event.
func (n *Notifier) NotifyInputLine(line PendingInputLine) {
	n.Notify(Event{Kind: EventInputLine, Line: line})
}
