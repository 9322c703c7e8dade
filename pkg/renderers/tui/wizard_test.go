package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	selectCfgs   []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	inputErr     error
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputErr != nil {
		return "", s.inputErr
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) printed(substr string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestWizard_FirstRunChoosesLanguageAndSubmits(t *testing.T) {
	store := &prefs.Memory{}
	sess := testsupport.OpenSession(t, testsupport.Form(t, "contact"), store)
	driver := &stubDriver{
		selectIdx: []int{1, 2, 0},
		inputs:    []string{"Ana", "bad", "ana@example.com", "(555) 123-4567"},
		textAreas: []string{""},
	}

	w, err := NewWizard(sess, WithPromptDriver(driver))
	require.NoError(t, err)

	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.LanguageSecondary, result.Payload.Language)
	assert.Equal(t, "5", result.Payload.Values["childAge"])
	assert.Equal(t, "ana@example.com", result.Payload.Values["email"])
	assert.True(t, driver.printed("Por favor ingresa una dirección de correo válida"))
	assert.True(t, driver.printed("¡Gracias! Te contactaremos dentro de 24 horas."))
	assert.Equal(t, []string{"English", "Español"}, driver.selectCfgs[0].Options)

	assert.Equal(t, model.StepState{Active: 1, Total: 1}, sess.Wizard().State())
	assert.Empty(t, sess.Wizard().Value("email"))
	snap := store.Snapshot()
	assert.True(t, snap.HasVisited)
	assert.Equal(t, model.LanguageSecondary, snap.PreferredLanguage)
}

func TestWizard_NavigatesTogglesAndRetries(t *testing.T) {
	var calls atomic.Int32
	sender := submit.SenderFunc(func(context.Context, submit.Payload) error {
		if calls.Add(1) == 1 {
			return errors.New("backend unavailable")
		}
		return nil
	})
	sess, err := session.Open(context.Background(), session.Deps{
		Form:   testsupport.Form(t, "enrollment"),
		Prefs:  prefs.NewMemory(prefs.Snapshot{HasVisited: true, PreferredLanguage: model.LanguagePrimary}),
		Sender: sender,
	})
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	driver := &stubDriver{
		inputs: []string{
			"Ana", "ana@example.com",
			"(555) 123-4567",
			"Ana", "ana@example.com",
			"(555) 123-4567",
			"Leo", "7", "6",
			"Leo", "6",
			"Leo", "6",
		},
		selectIdx: []int{0, 1, 1, 0, 1, 0, 2, 0, 0},
		confirm:   []bool{true},
	}
	w, err := NewWizard(sess, WithPromptDriver(driver))
	require.NoError(t, err)

	result, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, model.LanguageSecondary, result.Payload.Language)
	assert.Equal(t, "afternoon", result.Payload.Values["bestTime"])
	assert.Equal(t, "6", result.Payload.Values["childAge"])
	assert.True(t, driver.printed("Please select a valid age (4-6 years)"))
	assert.True(t, driver.printed("No pudimos enviar tu información. Por favor intenta de nuevo."))
	assert.Equal(t, len(driver.inputs), driver.inputPos)

	actions := driver.selectCfgs[len(driver.selectCfgs)-1].Options
	assert.Equal(t, []string{"Enviar", "Atrás", "English"}, actions)
}

func TestWizard_DeclinedRetryReturnsSendError(t *testing.T) {
	sendErr := errors.New("backend unavailable")
	sess, err := session.Open(context.Background(), session.Deps{
		Form:   testsupport.Form(t, "contact"),
		Prefs:  prefs.NewMemory(prefs.Snapshot{HasVisited: true}),
		Sender: submit.SenderFunc(func(context.Context, submit.Payload) error { return sendErr }),
	})
	require.NoError(t, err)
	t.Cleanup(sess.Close)

	driver := &stubDriver{
		inputs:    []string{"Ana", "ana@example.com", "(555) 123-4567"},
		selectIdx: []int{1, 0},
		textAreas: []string{"hello"},
		confirm:   []bool{false},
	}
	w, err := NewWizard(sess, WithPromptDriver(driver))
	require.NoError(t, err)

	_, err = w.Run(context.Background())
	require.ErrorIs(t, err, sendErr)
	assert.Equal(t, "ana@example.com", sess.Wizard().Value("email"), "values survive a failed send")
}

func TestWizard_AbortStops(t *testing.T) {
	sess := testsupport.OpenSession(t, testsupport.Form(t, "contact"), prefs.NewMemory(prefs.Snapshot{HasVisited: true}))
	w, err := NewWizard(sess, WithPromptDriver(&stubDriver{inputErr: ErrAborted}))
	require.NoError(t, err)

	_, err = w.Run(context.Background())
	assert.ErrorIs(t, err, ErrAborted)
}

func TestNewWizard_RequiresSession(t *testing.T) {
	_, err := NewWizard(nil)
	assert.ErrorIs(t, err, ErrSessionRequired)
}
