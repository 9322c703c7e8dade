package i18n

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/model"
)

// LanguageSaver persists the preferred language. prefs.Store satisfies it.
type LanguageSaver interface {
	SetPreferredLanguage(ctx context.Context, lang model.Language) error
}

// LanguageChange is the payload published on events.LanguageChanged.
type LanguageChange struct {
	From model.Language
	To   model.Language
}

// Element is a bound text element: the Go counterpart of markup carrying
// data-en/data-es (and data-<lang>-placeholder) attributes. When Key is set
// the text comes from the message table instead of the inline maps.
type Element struct {
	ID             string
	Key            string
	PlaceholderKey string
	Text           map[model.Language]string
	Placeholder    map[model.Language]string
}

// ElementState is the text currently displayed by a bound element.
type ElementState struct {
	Text        string
	Placeholder string
}

type boundElement struct {
	spec  Element
	state ElementState
}

// Option configures a Store.
type Option func(*Store)

// WithPersistence saves every language change through saver.
func WithPersistence(saver LanguageSaver) Option {
	return func(s *Store) {
		s.saver = saver
	}
}

// WithBus publishes events.LanguageChanged on every change.
func WithBus(bus *events.Bus) Option {
	return func(s *Store) {
		s.bus = bus
	}
}

// WithLogger attaches a logger; misses are logged at debug level, or warn in
// strict mode.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrict makes lookups that miss in both languages surface the key and
// log a warning instead of silently leaving text unchanged.
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithOnMissing overrides the handler used when T misses.
func WithOnMissing(handler MissingTranslationHandler) Option {
	return func(s *Store) {
		s.onMissing = handler
	}
}

// WithLanguage sets the initial language without persisting it.
func WithLanguage(lang model.Language) Option {
	return func(s *Store) {
		if lang.Valid() {
			s.lang = lang
		}
	}
}

// Store owns the active language for one visitor and keeps every bound
// element in sync with it.
type Store struct {
	mu        sync.RWMutex
	table     *MessageTable
	lang      model.Language
	elements  map[string]*boundElement
	order     []string
	saver     LanguageSaver
	bus       *events.Bus
	logger    *zap.Logger
	strict    bool
	onMissing MissingTranslationHandler
}

// NewStore constructs a Store reading from table. The language defaults to
// primary.
func NewStore(table *MessageTable, opts ...Option) *Store {
	s := &Store{
		table:    table,
		lang:     model.LanguagePrimary,
		elements: make(map[string]*boundElement),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.onMissing == nil {
		if s.strict {
			s.onMissing = missingTranslationStrict
		} else {
			s.onMissing = missingTranslationDefault
		}
	}
	return s
}

// Language returns the active language.
func (s *Store) Language() model.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// Indicator returns the uppercase code for the active language.
func (s *Store) Indicator() string {
	return s.Language().Code()
}

// Table returns the message table in use.
func (s *Store) Table() *MessageTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// SetTable swaps in a reloaded table and re-propagates bound text.
func (s *Store) SetTable(table *MessageTable) {
	if table == nil {
		return
	}
	s.mu.Lock()
	s.table = table
	s.propagateLocked()
	s.mu.Unlock()
}

// SetLanguage makes lang active, updates every bound element, persists the
// preference, and publishes events.LanguageChanged. Bound elements are updated
// even when the persistence call fails; the error is returned to the caller.
func (s *Store) SetLanguage(ctx context.Context, lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	s.mu.Lock()
	previous := s.lang
	s.lang = lang
	s.propagateLocked()
	s.mu.Unlock()

	s.logger.Debug("language changed",
		zap.String("from", string(previous)),
		zap.String("to", string(lang)))

	s.bus.Publish(events.Event{
		Topic:   events.LanguageChanged,
		Payload: LanguageChange{From: previous, To: lang},
	})

	if s.saver != nil {
		if err := s.saver.SetPreferredLanguage(ctx, lang); err != nil {
			return fmt.Errorf("i18n: persist language: %w", err)
		}
	}
	return nil
}

// Toggle flips between the two supported languages.
func (s *Store) Toggle(ctx context.Context) (model.Language, error) {
	next := s.Language().Other()
	return next, s.SetLanguage(ctx, next)
}

// Lookup reads key under lang with primary-language fallback.
func (s *Store) Lookup(lang model.Language, key string) (string, bool) {
	return s.Table().Lookup(lang, key)
}

// T translates key in the active language. Misses go through the configured
// MissingTranslationHandler; by default that yields the "default" param or
// an empty string.
func (s *Store) T(key string, args ...any) string {
	lang := s.Language()
	msg, ok := s.Lookup(lang, key)
	if ok {
		return Format(msg, args...)
	}
	err := fmt.Errorf("%w: %s/%s", ErrMissingTranslation, lang, key)
	if s.strict {
		s.logger.Warn("missing translation", zap.String("language", string(lang)), zap.String("key", key))
	} else {
		s.logger.Debug("missing translation", zap.String("language", string(lang)), zap.String("key", key))
	}
	return s.onMissing(string(lang), key, args, err)
}

// Translate implements Translator on top of the store's table and miss
// handling, so renderers can take a Store wherever a Translator is accepted.
func (s *Store) Translate(locale, key string, args ...any) (string, error) {
	return s.Table().Translate(locale, key, args...)
}

// Bind registers el and applies the active language to it. The returned
// function removes the binding; calling it twice is harmless.
func (s *Store) Bind(el Element) func() {
	id := strings.TrimSpace(el.ID)
	if id == "" {
		return func() {}
	}
	el.ID = id

	s.mu.Lock()
	bound := &boundElement{spec: el}
	// Markup ships with primary-language text; the active language is applied
	// on top, exactly as a page load with a saved preference would.
	bound.state.Text = s.elementText(el, model.LanguagePrimary)
	bound.state.Placeholder = s.elementPlaceholder(el, model.LanguagePrimary)
	s.apply(bound, s.lang)
	if _, exists := s.elements[id]; !exists {
		s.order = append(s.order, id)
	}
	s.elements[id] = bound
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if current, ok := s.elements[id]; ok && current == bound {
				delete(s.elements, id)
				s.order = removeString(s.order, id)
			}
		})
	}
}

// Element returns the displayed state of a bound element.
func (s *Store) Element(id string) (ElementState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bound, ok := s.elements[id]
	if !ok {
		return ElementState{}, false
	}
	return bound.state, true
}

// Snapshot returns the displayed text of every bound element keyed by ID.
func (s *Store) Snapshot() map[string]ElementState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]ElementState, len(s.elements))
	for id, bound := range s.elements {
		out[id] = bound.state
	}
	return out
}

// BoundIDs lists bound element IDs in binding order.
func (s *Store) BoundIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]string(nil), s.order...)
	return out
}

func (s *Store) propagateLocked() {
	ids := make([]string, 0, len(s.elements))
	for id := range s.elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s.apply(s.elements[id], s.lang)
	}
}

// apply replaces text only when the element has a value for lang; otherwise
// the current text stays.
func (s *Store) apply(bound *boundElement, lang model.Language) {
	if text := s.elementText(bound.spec, lang); text != "" {
		bound.state.Text = text
	}
	if placeholder := s.elementPlaceholder(bound.spec, lang); placeholder != "" {
		bound.state.Placeholder = placeholder
	}
}

func (s *Store) elementText(el Element, lang model.Language) string {
	if el.Key != "" {
		msg, _ := s.table.Lookup(lang, el.Key)
		return msg
	}
	return strings.TrimSpace(el.Text[lang])
}

func (s *Store) elementPlaceholder(el Element, lang model.Language) string {
	if el.PlaceholderKey != "" {
		msg, _ := s.table.Lookup(lang, el.PlaceholderKey)
		return msg
	}
	return strings.TrimSpace(el.Placeholder[lang])
}

func removeString(values []string, target string) []string {
	for i, v := range values {
		if v == target {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return values
}
