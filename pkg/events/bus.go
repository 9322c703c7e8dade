// Package events provides the explicit subscribe/publish seam that replaces
// global DOM listeners. Components publish state transitions; renderers and
// sessions subscribe at construction and unsubscribe on teardown.
package events

import (
	"sync"
)

// Topic names a category of event.
type Topic string

const (
	LanguageChanged     Topic = "language.changed"
	StepChanged         Topic = "step.changed"
	FieldInvalid        Topic = "field.invalid"
	FieldCleared        Topic = "field.cleared"
	SubmissionStarted   Topic = "submission.started"
	SubmissionSucceeded Topic = "submission.succeeded"
	SubmissionFailed    Topic = "submission.failed"
	NotificationShown   Topic = "notification.shown"
	ModalChanged        Topic = "modal.changed"
)

// Event carries a topic plus an optional payload. Payload types are documented
// next to the publisher.
type Event struct {
	Topic   Topic
	Payload any
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus dispatches events synchronously, in subscription order. The zero value
// is not usable; construct with NewBus. A nil *Bus drops every publish so
// components can treat the bus as optional.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
	closed bool
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers handler for topic and returns a function that removes
// the registration. Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, handler Handler) func() {
	if b == nil || handler == nil {
		return func() {}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// Publish delivers evt to every handler subscribed to its topic. Handlers are
// snapshotted before dispatch so they may subscribe or unsubscribe freely.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := append([]subscription(nil), b.subs[evt.Topic]...)
	b.mu.RUnlock()

	for _, sub := range handlers {
		sub.handler(evt)
	}
}

// Len reports the number of handlers subscribed to topic.
func (b *Bus) Len(topic Topic) int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close drops every subscription; later publishes and subscriptions are no-ops.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[Topic][]subscription)
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, sub := range subs {
		if sub.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}
