package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func TestAnnotations_ClearIsIdempotent(t *testing.T) {
	bus := events.NewBus()
	cleared := 0
	bus.Subscribe(events.FieldCleared, func(events.Event) { cleared++ })

	notes := validation.NewAnnotations(bus)
	notes.Show("email", "Please enter a valid email address")
	require.True(t, notes.Invalid("email"))

	notes.Clear("email")
	once := notes.Snapshot()
	notes.Clear("email")
	twice := notes.Snapshot()

	assert.Equal(t, once, twice)
	assert.Empty(t, twice)
	assert.Equal(t, 1, cleared, "clearing a clean field must not publish")
}

func TestAnnotations_ShowReplacesExisting(t *testing.T) {
	notes := validation.NewAnnotations(nil)
	notes.Show("phone", "first")
	notes.Show("phone", "second")

	msg, ok := notes.Get("phone")
	require.True(t, ok)
	assert.Equal(t, "second", msg)
	assert.Equal(t, 1, notes.Len())
}

func TestAnnotations_ApplyAndClearAll(t *testing.T) {
	notes := validation.NewAnnotations(nil)
	notes.Show("stale", "old")

	notes.Apply(validation.Report{
		Order: []string{"stale", "email"},
		Results: map[string]model.ValidationResult{
			"stale": {Valid: true},
			"email": {Kind: model.ErrorKindEmail, Message: "bad email"},
		},
	})
	assert.Equal(t, map[string]string{"email": "bad email"}, notes.Snapshot())

	notes.ClearAll()
	assert.Zero(t, notes.Len())
	notes.ClearAll()
	assert.Zero(t, notes.Len())
}
