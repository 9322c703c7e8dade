// Package session aggregates one visitor's state: the language store and its
// persisted preferences, the step controller, the submission flow, the
// notification center, and the first-visit language modal. Frontends (the
// HTTP server and the terminal wizard) drive a Session and render its View.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/wizard"
)

// Page text keys bound on every session.
var pageKeys = []string{
	"page.title",
	"page.subtitle",
	"page.modal_title",
	"page.modal_english",
	"page.modal_spanish",
	"page.toggle_hint",
	"page.form_title",
	"submit.next",
	"submit.back",
	"share.title",
	"share.text",
}

// Deps are the collaborators a Session is built from.
type Deps struct {
	Form  model.FormModel
	Table *i18n.MessageTable
	Prefs prefs.Store
	// Sender defaults to a SimulatedSender with submit.DefaultDelay.
	Sender    submit.Sender
	NotifyTTL time.Duration
	Strict    bool
	// Language is used on a first visit, before the visitor has chosen.
	Language model.Language
	Logger   *zap.Logger
}

// Session is safe for concurrent use. Submit blocks only its caller; other
// requests keep reading state while a submission is in flight.
type Session struct {
	mu        sync.Mutex
	modalOpen bool

	bus    *events.Bus
	prefs  prefs.Store
	lang   *i18n.Store
	notes  *validation.Annotations
	ctrl   *wizard.Controller
	flow   *submit.Flow
	center *notify.Center
	logger *zap.Logger
	unsubs []func()
}

// Open builds a session. A visitor who has never chosen a language gets the
// modal; a returning visitor gets their saved language applied.
func Open(ctx context.Context, deps Deps) (*Session, error) {
	if deps.Prefs == nil {
		deps.Prefs = &prefs.Memory{}
	}
	if deps.Table == nil {
		deps.Table = i18n.Default()
	}
	if deps.Sender == nil {
		deps.Sender = submit.SimulatedSender{Delay: submit.DefaultDelay}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.NotifyTTL == 0 {
		deps.NotifyTTL = notify.DefaultTTL
	}

	visited, err := deps.Prefs.HasVisited(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: read visited flag: %w", err)
	}
	// A returning visitor who never saved a language stays on the primary
	// one; the hint only seeds the first-visit modal.
	initial := model.LanguagePrimary
	if visited {
		saved, ok, err := deps.Prefs.PreferredLanguage(ctx)
		if err != nil {
			return nil, fmt.Errorf("session: read preferred language: %w", err)
		}
		if ok {
			initial = saved
		}
	} else if deps.Language.Valid() {
		initial = deps.Language
	}

	bus := events.NewBus()
	s := &Session{
		modalOpen: !visited,
		bus:       bus,
		prefs:     deps.Prefs,
		logger:    logger,
	}
	s.lang = i18n.NewStore(deps.Table,
		i18n.WithLanguage(initial),
		i18n.WithPersistence(deps.Prefs),
		i18n.WithBus(bus),
		i18n.WithStrict(deps.Strict),
		i18n.WithLogger(logger))
	s.notes = validation.NewAnnotations(bus)
	s.center = notify.NewCenter(
		notify.WithTTL(deps.NotifyTTL),
		notify.WithBus(bus),
		notify.WithLogger(logger))

	s.ctrl, err = wizard.New(deps.Form, s.notes,
		wizard.WithBus(bus),
		wizard.WithLocalizer(wizard.CatalogLocalizer(s.lang.T)))
	if err != nil {
		s.center.Close()
		return nil, fmt.Errorf("session: %w", err)
	}
	s.flow, err = submit.New(s.ctrl, deps.Sender, s.center, s.lang.T,
		submit.WithBus(bus),
		submit.WithLogger(logger),
		submit.WithLanguage(s.lang.Language))
	if err != nil {
		s.center.Close()
		return nil, fmt.Errorf("session: %w", err)
	}

	s.bindTexts(deps.Form)
	s.unsubs = append(s.unsubs,
		bus.Subscribe(events.FieldInvalid, s.logEvent),
		bus.Subscribe(events.StepChanged, s.logEvent),
		bus.Subscribe(events.ModalChanged, s.logEvent),
	)
	return s, nil
}

func (s *Session) bindTexts(form model.FormModel) {
	for _, key := range pageKeys {
		s.unsubs = append(s.unsubs, s.lang.Bind(i18n.Element{ID: key, Key: key}))
	}
	for _, step := range form.Steps {
		s.unsubs = append(s.unsubs, s.lang.Bind(i18n.Element{ID: stepTextID(step.ID), Text: step.Title}))
	}
	for _, field := range form.Fields() {
		label := field.Label
		if len(label) == 0 && field.LabelKey == "" {
			label = map[model.Language]string{model.LanguagePrimary: model.DefaultLabeler(field.Name)}
		}
		s.unsubs = append(s.unsubs, s.lang.Bind(i18n.Element{
			ID:             fieldTextID(field.Name),
			Key:            field.LabelKey,
			PlaceholderKey: field.PlaceholderKey,
			Text:           label,
			Placeholder:    field.Placeholder,
		}))
	}
}

func (s *Session) logEvent(evt events.Event) {
	s.logger.Debug("session event", zap.String("topic", string(evt.Topic)), zap.Any("payload", evt.Payload))
}

// Language returns the active language.
func (s *Session) Language() model.Language {
	return s.lang.Language()
}

// I18n exposes the language store.
func (s *Session) I18n() *i18n.Store {
	return s.lang
}

// Wizard exposes the step controller.
func (s *Session) Wizard() *wizard.Controller {
	return s.ctrl
}

// Submission exposes the submission flow.
func (s *Session) Submission() *submit.Flow {
	return s.flow
}

// Notifications exposes the notification center.
func (s *Session) Notifications() *notify.Center {
	return s.center
}

// Bus exposes the session event bus for extra subscribers.
func (s *Session) Bus() *events.Bus {
	return s.bus
}

// ModalOpen reports whether the language modal is showing.
func (s *Session) ModalOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modalOpen
}

// SelectLanguage applies the modal choice: the language becomes active, the
// modal closes, and both preferences are saved.
func (s *Session) SelectLanguage(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("session: %w: %q", i18n.ErrUnsupportedLanguage, lang)
	}
	s.setModal(false)
	if err := s.lang.SetLanguage(ctx, lang); err != nil {
		return fmt.Errorf("session: select language: %w", err)
	}
	if err := s.prefs.MarkVisited(ctx); err != nil {
		return fmt.Errorf("session: mark visited: %w", err)
	}
	return nil
}

// ToggleLanguage flips the language and saves it. The visited flag is left
// alone.
func (s *Session) ToggleLanguage(ctx context.Context) (model.Language, error) {
	lang, err := s.lang.Toggle(ctx)
	if err != nil {
		return lang, fmt.Errorf("session: toggle language: %w", err)
	}
	return lang, nil
}

// Submit runs the submission flow.
func (s *Session) Submit(ctx context.Context) (submit.Result, error) {
	return s.flow.Submit(ctx)
}

// SetTable swaps in a reloaded catalog.
func (s *Session) SetTable(table *i18n.MessageTable) {
	s.lang.SetTable(table)
}

// Close releases timers and subscriptions. The session is unusable after.
func (s *Session) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	s.center.Close()
	s.bus.Close()
}

func (s *Session) setModal(open bool) {
	s.mu.Lock()
	changed := s.modalOpen != open
	s.modalOpen = open
	s.mu.Unlock()
	if changed {
		s.bus.Publish(events.Event{Topic: events.ModalChanged, Payload: open})
	}
}

func stepTextID(id string) string {
	return "step." + strings.TrimSpace(id)
}

func fieldTextID(name string) string {
	return "field." + strings.TrimSpace(name)
}
