package validation

import (
	"sort"
	"sync"

	"github.com/goliatone/go-formflow/pkg/events"
)

// Annotation is the inline error shown next to a field.
type Annotation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Annotations tracks which fields are visibly invalid. It is the UI-bound
// wrapper around the pure validator: Show marks a field, Clear removes the
// mark. Safe for concurrent use.
type Annotations struct {
	mu      sync.RWMutex
	entries map[string]string
	bus     *events.Bus
}

// NewAnnotations constructs an empty annotation set. bus may be nil.
func NewAnnotations(bus *events.Bus) *Annotations {
	return &Annotations{entries: make(map[string]string), bus: bus}
}

// Show replaces any existing annotation on field with message.
func (a *Annotations) Show(field, message string) {
	if a == nil || field == "" {
		return
	}
	a.mu.Lock()
	a.entries[field] = message
	a.mu.Unlock()
	a.bus.Publish(events.Event{Topic: events.FieldInvalid, Payload: Annotation{Field: field, Message: message}})
}

// Clear removes the annotation on field. Clearing a clean field is a no-op
// and publishes nothing.
func (a *Annotations) Clear(field string) {
	if a == nil {
		return
	}
	a.mu.Lock()
	_, existed := a.entries[field]
	delete(a.entries, field)
	a.mu.Unlock()
	if existed {
		a.bus.Publish(events.Event{Topic: events.FieldCleared, Payload: field})
	}
}

// ClearAll removes every annotation.
func (a *Annotations) ClearAll() {
	if a == nil {
		return
	}
	a.mu.Lock()
	cleared := make([]string, 0, len(a.entries))
	for field := range a.entries {
		cleared = append(cleared, field)
	}
	a.entries = make(map[string]string)
	a.mu.Unlock()

	sort.Strings(cleared)
	for _, field := range cleared {
		a.bus.Publish(events.Event{Topic: events.FieldCleared, Payload: field})
	}
}

// Get returns the message on field.
func (a *Annotations) Get(field string) (string, bool) {
	if a == nil {
		return "", false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	msg, ok := a.entries[field]
	return msg, ok
}

// Invalid reports whether field is currently marked invalid.
func (a *Annotations) Invalid(field string) bool {
	_, ok := a.Get(field)
	return ok
}

// Len reports how many fields are annotated.
func (a *Annotations) Len() int {
	if a == nil {
		return 0
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Snapshot copies the current annotations keyed by field name.
func (a *Annotations) Snapshot() map[string]string {
	if a == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.entries))
	for field, msg := range a.entries {
		out[field] = msg
	}
	return out
}

// Apply shows failures from report and clears fields that passed.
func (a *Annotations) Apply(report Report) {
	for _, name := range report.Order {
		result := report.Results[name]
		if result.Valid {
			a.Clear(name)
			continue
		}
		a.Show(name, result.Message)
	}
}
