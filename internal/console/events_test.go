package console

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/surface"
)

func TestNotifierDeliversToAllObservers(t *testing.T) {
	n := NewNotifier()

	var first, second []Event
	n.Subscribe(func(ev Event) { first = append(first, ev) })
	n.Subscribe(func(ev Event) { second = append(second, ev) })

	n.NotifyCleared()

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("deliveries = %d, %d, want 1, 1", len(first), len(second))
	}
	if first[0].Kind != EventCleared {
		t.Errorf("Kind = %v, want %v", first[0].Kind, EventCleared)
	}
}

func TestNotifierColorSpanFields(t *testing.T) {
	n := NewNotifier()

	var got Event
	n.Subscribe(func(ev Event) { got = ev })

	fg := &colorful.Color{R: 1}
	span := surface.Span{Start: 4, End: 9}
	n.NotifyColorSpan(span, fg, nil)

	if got.Kind != EventColorSpan {
		t.Fatalf("Kind = %v, want %v", got.Kind, EventColorSpan)
	}
	if got.Span != span {
		t.Errorf("Span = %v, want %v", got.Span, span)
	}
	if got.Foreground != fg {
		t.Errorf("Foreground = %v, want %v", got.Foreground, fg)
	}
	if got.Background != nil {
		t.Errorf("Background = %v, want nil", got.Background)
	}
}

func TestNotifierUnsubscribe(t *testing.T) {
	n := NewNotifier()

	var kept, dropped int
	n.Subscribe(func(Event) { kept++ })
	sub := n.Subscribe(func(Event) { dropped++ })

	n.NotifyCleared()
	sub.Unsubscribe()
	n.NotifyCleared()

	if kept != 2 {
		t.Errorf("kept observer deliveries = %d, want 2", kept)
	}
	if dropped != 1 {
		t.Errorf("unsubscribed observer deliveries = %d, want 1", dropped)
	}
}

func TestEventKindString(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventColorSpan, "color-span"},
		{EventCleared, "cleared"},
		{EventInputLine, "input-line"},
		{EventKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("EventKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
