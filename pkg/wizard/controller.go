// Package wizard drives the linear multi-step form: it owns the entered
// values and the active step, and refuses to advance past a step whose
// fields do not validate.
package wizard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Localizer turns a failed result into display text.
type Localizer func(result model.ValidationResult, spec model.FieldSpec) string

// StepChange is the payload published on events.StepChanged.
type StepChange struct {
	From int
	To   int
}

// Indicator describes one dot of the step indicator.
type Indicator struct {
	Index     int  `json:"index"`
	Active    bool `json:"active"`
	Completed bool `json:"completed"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithBus publishes events.StepChanged on every transition.
func WithBus(bus *events.Bus) Option {
	return func(c *Controller) {
		c.bus = bus
	}
}

// WithLocalizer sets how failures become annotation text. Without one the
// error kind is used verbatim.
func WithLocalizer(localize Localizer) Option {
	return func(c *Controller) {
		if localize != nil {
			c.localize = localize
		}
	}
}

// Controller is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	form     model.FormModel
	specs    map[string]model.FieldSpec
	values   map[string]string
	active   int
	notes    *validation.Annotations
	bus      *events.Bus
	localize Localizer
}

// New returns a controller positioned on step 1. A form without steps is
// rejected.
func New(form model.FormModel, notes *validation.Annotations, opts ...Option) (*Controller, error) {
	if len(form.Steps) == 0 {
		return nil, fmt.Errorf("wizard: form %q has no steps", form.ID)
	}
	if notes == nil {
		notes = validation.NewAnnotations(nil)
	}
	c := &Controller{
		form:     form,
		specs:    make(map[string]model.FieldSpec),
		values:   make(map[string]string),
		active:   1,
		notes:    notes,
		localize: func(res model.ValidationResult, _ model.FieldSpec) string { return string(res.Kind) },
	}
	for _, field := range form.Fields() {
		c.specs[field.Name] = field
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Form returns the form being driven.
func (c *Controller) Form() model.FormModel {
	return c.form
}

// Annotations returns the annotation set the controller writes to.
func (c *Controller) Annotations() *validation.Annotations {
	return c.notes
}

// SetValue stores raw for name and clears the field's annotation, the way an
// edit dismisses a stale inline error.
func (c *Controller) SetValue(name, raw string) error {
	name = strings.TrimSpace(name)
	c.mu.Lock()
	if _, ok := c.specs[name]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("wizard: unknown field %q", name)
	}
	c.values[name] = raw
	c.mu.Unlock()

	c.notes.Clear(name)
	return nil
}

// Value returns the stored value for name.
func (c *Controller) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Values returns a copy of every stored value.
func (c *Controller) Values() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// ClearValues empties every field.
func (c *Controller) ClearValues() {
	c.mu.Lock()
	c.values = make(map[string]string)
	c.mu.Unlock()
}

// Blur validates a single field and shows or clears its annotation.
func (c *Controller) Blur(name string) (model.ValidationResult, error) {
	c.mu.Lock()
	spec, ok := c.specs[name]
	raw := c.values[name]
	c.mu.Unlock()
	if !ok {
		return model.ValidationResult{}, fmt.Errorf("wizard: unknown field %q", name)
	}
	return c.check(spec, raw), nil
}

// Advance validates the active step and moves forward when every field
// passes. On the last step it only validates. It reports whether the step's
// fields were valid.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	from := c.active
	fields := c.form.Steps[from-1].Fields
	values := c.snapshotLocked()
	c.mu.Unlock()

	if !c.checkAll(fields, values) {
		return false
	}

	c.mu.Lock()
	if c.active != from || from >= len(c.form.Steps) {
		c.mu.Unlock()
		return true
	}
	c.active = from + 1
	to := c.active
	c.mu.Unlock()

	c.publish(from, to)
	return true
}

// Retreat moves back one step without validating. Step 1 is a floor.
func (c *Controller) Retreat() {
	c.mu.Lock()
	from := c.active
	if from <= 1 {
		c.mu.Unlock()
		return
	}
	c.active = from - 1
	to := c.active
	c.mu.Unlock()

	c.publish(from, to)
}

// Reset returns to step 1.
func (c *Controller) Reset() {
	c.mu.Lock()
	from := c.active
	c.active = 1
	c.mu.Unlock()

	if from != 1 {
		c.publish(from, 1)
	}
}

// ValidateAll validates every field on every step, annotating failures.
func (c *Controller) ValidateAll() bool {
	_, ok := c.ValidateSnapshot()
	return ok
}

// ValidateSnapshot copies the values, validates the copy, and returns it.
// Edits made while validation runs are not part of the returned values.
func (c *Controller) ValidateSnapshot() (map[string]string, bool) {
	c.mu.Lock()
	values := c.snapshotLocked()
	c.mu.Unlock()
	return values, c.checkAll(c.form.Fields(), values)
}

// State returns the active step and the step count.
func (c *Controller) State() model.StepState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.StepState{Active: c.active, Total: len(c.form.Steps)}
}

// ActiveStep returns the step currently displayed.
func (c *Controller) ActiveStep() model.Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Steps[c.active-1]
}

// Indicators describes the step dots: steps before the active one are
// completed.
func (c *Controller) Indicators() []Indicator {
	state := c.State()
	out := make([]Indicator, state.Total)
	for i := range out {
		idx := i + 1
		out[i] = Indicator{Index: idx, Active: idx == state.Active, Completed: idx < state.Active}
	}
	return out
}

func (c *Controller) checkAll(fields []model.FieldSpec, values map[string]string) bool {
	valid := true
	for _, field := range fields {
		if !c.check(field, values[field.Name]).Valid {
			valid = false
		}
	}
	return valid
}

func (c *Controller) check(spec model.FieldSpec, raw string) model.ValidationResult {
	res := validation.Validate(spec, raw)
	if res.Valid {
		c.notes.Clear(spec.Name)
		return res
	}
	res.Message = c.localize(res, spec)
	c.notes.Show(spec.Name, res.Message)
	return res
}

func (c *Controller) snapshotLocked() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *Controller) publish(from, to int) {
	c.bus.Publish(events.Event{Topic: events.StepChanged, Payload: StepChange{From: from, To: to}})
}
