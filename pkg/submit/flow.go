// Package submit runs the final submission of a completed form: it
// re-validates every step, guards against double submission, sends the
// values, and then either resets the wizard or surfaces the failure.
package submit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// Catalog keys used by the flow.
const (
	KeyLabel   = "submit.label"
	KeySending = "submit.sending"
	KeySuccess = "submit.success"
	KeyFailure = "submit.failure"
)

var (
	// ErrInvalid is returned when a field fails validation at submit time.
	ErrInvalid = errors.New("submit: form has invalid fields")
	// ErrInFlight is returned when a submission is already being sent.
	ErrInFlight = errors.New("submit: submission already in flight")
)

// Control is the submit button state.
type Control struct {
	Disabled bool   `json:"disabled"`
	Label    string `json:"label"`
}

// Result describes a successful submission.
type Result struct {
	Payload      Payload
	Notification notify.Notification
}

// Option configures a Flow.
type Option func(*Flow)

// WithBus publishes the Submission* events.
func WithBus(bus *events.Bus) Option {
	return func(f *Flow) {
		f.bus = bus
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Flow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithLanguage reports the active language stamped on each payload.
func WithLanguage(current func() model.Language) Option {
	return func(f *Flow) {
		f.language = current
	}
}

// WithClock sets the time source for Payload.SubmittedAt.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

// Flow coordinates one form's submission.
type Flow struct {
	mu       sync.Mutex
	sending  bool
	ctrl     *wizard.Controller
	sender   Sender
	notifier notify.Notifier
	lookup   validation.LookupFunc
	bus      *events.Bus
	logger   *zap.Logger
	language func() model.Language
	now      func() time.Time
}

// New wires a flow. lookup resolves catalog keys in the active language.
func New(ctrl *wizard.Controller, sender Sender, notifier notify.Notifier, lookup validation.LookupFunc, opts ...Option) (*Flow, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("submit: controller is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("submit: sender is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("submit: notifier is required")
	}
	if lookup == nil {
		lookup = func(key string, _ ...any) string { return key }
	}
	f := &Flow{
		ctrl:     ctrl,
		sender:   sender,
		notifier: notifier,
		lookup:   lookup,
		logger:   zap.NewNop(),
		language: func() model.Language { return model.LanguagePrimary },
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Control returns the submit button state in the active language.
func (f *Flow) Control() Control {
	f.mu.Lock()
	sending := f.sending
	f.mu.Unlock()
	if sending {
		return Control{Disabled: true, Label: f.lookup(KeySending)}
	}
	return Control{Label: f.lookup(KeyLabel)}
}

// InFlight reports whether a submission is being sent.
func (f *Flow) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sending
}

// Submit validates, sends, and settles the form. It blocks for the duration
// of the send.
func (f *Flow) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.sending {
		f.mu.Unlock()
		return Result{}, ErrInFlight
	}
	f.sending = true
	f.mu.Unlock()

	values, ok := f.ctrl.ValidateSnapshot()
	if !ok {
		f.mu.Lock()
		f.sending = false
		f.mu.Unlock()
		return Result{}, ErrInvalid
	}

	payload := Payload{
		FormID:      f.ctrl.Form().ID,
		Language:    f.language(),
		Values:      values,
		SubmittedAt: f.now(),
	}
	f.bus.Publish(events.Event{Topic: events.SubmissionStarted, Payload: payload})
	f.logger.Info("submission started", zap.String("form", payload.FormID), zap.String("language", string(payload.Language)))

	err := f.sender.Send(ctx, payload)

	f.mu.Lock()
	f.sending = false
	f.mu.Unlock()

	if err != nil {
		f.fail(err)
		return Result{Payload: payload}, fmt.Errorf("submit: send: %w", err)
	}

	f.ctrl.ClearValues()
	f.ctrl.Reset()
	f.ctrl.Annotations().ClearAll()
	n := f.notifier.Show(f.lookup(KeySuccess), notify.KindSuccess)

	f.bus.Publish(events.Event{Topic: events.SubmissionSucceeded, Payload: payload})
	f.logger.Info("submission succeeded", zap.String("form", payload.FormID))
	return Result{Payload: payload, Notification: n}, nil
}

// fail keeps the step and values, annotates remote field errors, and shows
// the failure notice.
func (f *Flow) fail(err error) {
	var remote *RemoteError
	if errors.As(err, &remote) {
		notes := f.ctrl.Annotations()
		for field, messages := range remote.Fields {
			if len(messages) > 0 {
				notes.Show(field, messages[0])
			}
		}
	}
	f.notifier.Show(f.lookup(KeyFailure), notify.KindError)
	f.bus.Publish(events.Event{Topic: events.SubmissionFailed, Payload: err})
	f.logger.Warn("submission failed", zap.Error(err))
}
