package i18n_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/events"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
)

type recordingSaver struct {
	saved []model.Language
	err   error
}

func (r *recordingSaver) SetPreferredLanguage(_ context.Context, lang model.Language) error {
	r.saved = append(r.saved, lang)
	return r.err
}

func testTable() *i18n.MessageTable {
	return i18n.NewMessageTable(map[model.Language]map[string]string{
		model.LanguagePrimary: {
			"page.title":  "Clinical study",
			"page.only":   "English only",
			"submit.send": "Sending...",
		},
		model.LanguageSecondary: {
			"page.title":  "Estudio clínico",
			"submit.send": "Enviando...",
		},
	})
}

func TestMessageTable_LookupFallsBackToPrimary(t *testing.T) {
	table := testTable()

	if got, ok := table.Lookup(model.LanguageSecondary, "page.title"); !ok || got != "Estudio clínico" {
		t.Fatalf("expected spanish entry, got %q (%v)", got, ok)
	}
	if got, ok := table.Lookup(model.LanguageSecondary, "page.only"); !ok || got != "English only" {
		t.Fatalf("expected primary fallback, got %q (%v)", got, ok)
	}
	if got, ok := table.Lookup(model.LanguageSecondary, "page.unknown"); ok || got != "" {
		t.Fatalf("expected miss for unknown key, got %q (%v)", got, ok)
	}
}

func TestMessageTable_TranslateFormatsParams(t *testing.T) {
	msg, err := i18n.Default().Translate("es-MX", "validation.age", map[string]any{"min": 4, "max": 6})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if msg != "Por favor selecciona una edad válida (4-6 años)" {
		t.Fatalf("unexpected message %q", msg)
	}

	_, err = i18n.Default().Translate("en", "does.not.exist")
	if !errors.Is(err, i18n.ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
}

func TestDefaultCatalogs_SpanishIsComplete(t *testing.T) {
	table := i18n.Default()
	if missing := table.Missing(model.LanguageSecondary); len(missing) != 0 {
		t.Fatalf("spanish catalog missing keys: %v", missing)
	}
	if got, _ := table.Lookup(model.LanguagePrimary, "share.copied"); got != "Link copied to clipboard!" {
		t.Fatalf("unexpected share.copied %q", got)
	}
}

func TestStore_SetLanguageRoundTrip(t *testing.T) {
	saver := &recordingSaver{}
	bus := events.NewBus()
	var changes []i18n.LanguageChange
	bus.Subscribe(events.LanguageChanged, func(evt events.Event) {
		changes = append(changes, evt.Payload.(i18n.LanguageChange))
	})

	store := i18n.NewStore(testTable(), i18n.WithPersistence(saver), i18n.WithBus(bus))
	store.Bind(i18n.Element{ID: "title", Key: "page.title"})
	store.Bind(i18n.Element{
		ID:   "hero",
		Text: map[model.Language]string{model.LanguagePrimary: "Join the study", model.LanguageSecondary: "Únete al estudio"},
	})

	ctx := context.Background()
	if err := store.SetLanguage(ctx, model.LanguageSecondary); err != nil {
		t.Fatalf("set language: %v", err)
	}

	want := map[string]i18n.ElementState{
		"title": {Text: "Estudio clínico"},
		"hero":  {Text: "Únete al estudio"},
	}
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if store.Indicator() != "ES" {
		t.Fatalf("expected ES indicator, got %q", store.Indicator())
	}

	if _, err := store.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := store.Toggle(ctx); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if diff := cmp.Diff(want, store.Snapshot()); diff != "" {
		t.Fatalf("toggling twice should restore text (-want +got):\n%s", diff)
	}

	wantSaved := []model.Language{model.LanguageSecondary, model.LanguagePrimary, model.LanguageSecondary}
	if diff := cmp.Diff(wantSaved, saver.saved); diff != "" {
		t.Fatalf("persisted languages mismatch (-want +got):\n%s", diff)
	}
	if len(changes) != 3 || changes[0].From != model.LanguagePrimary || changes[0].To != model.LanguageSecondary {
		t.Fatalf("unexpected change events %+v", changes)
	}
}

func TestStore_MissingTranslationLeavesTextUnchanged(t *testing.T) {
	store := i18n.NewStore(testTable())
	store.Bind(i18n.Element{
		ID:          "note",
		Text:        map[model.Language]string{model.LanguagePrimary: "Only English"},
		Placeholder: map[model.Language]string{model.LanguagePrimary: "Type here", model.LanguageSecondary: "Escribe aquí"},
	})

	if err := store.SetLanguage(context.Background(), model.LanguageSecondary); err != nil {
		t.Fatalf("set language: %v", err)
	}
	state, ok := store.Element("note")
	if !ok {
		t.Fatalf("expected bound element")
	}
	if state.Text != "Only English" {
		t.Fatalf("expected text unchanged, got %q", state.Text)
	}
	if state.Placeholder != "Escribe aquí" {
		t.Fatalf("expected placeholder swapped, got %q", state.Placeholder)
	}
	if got := store.T("nope.missing"); got != "" {
		t.Fatalf("expected silent empty fallback, got %q", got)
	}
	if got := store.T("nope.missing", map[string]any{"default": "Fallback"}); got != "Fallback" {
		t.Fatalf("expected default param, got %q", got)
	}
}

func TestStore_StrictSurfacesKey(t *testing.T) {
	store := i18n.NewStore(testTable(), i18n.WithStrict(true))
	if got := store.T("nope.missing"); got != "nope.missing" {
		t.Fatalf("expected key in strict mode, got %q", got)
	}
}

func TestStore_RejectsUnsupportedLanguageAndReportsSaveErrors(t *testing.T) {
	saver := &recordingSaver{err: errors.New("disk full")}
	store := i18n.NewStore(testTable(), i18n.WithPersistence(saver))

	if err := store.SetLanguage(context.Background(), model.Language("fr")); !errors.Is(err, i18n.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if err := store.SetLanguage(context.Background(), model.LanguageSecondary); err == nil {
		t.Fatalf("expected persistence error")
	}
	if store.Language() != model.LanguageSecondary {
		t.Fatalf("language should change even when saving fails")
	}
}

func TestStore_UnbindIsIdempotent(t *testing.T) {
	store := i18n.NewStore(testTable())
	unbind := store.Bind(i18n.Element{ID: "title", Key: "page.title"})
	unbind()
	unbind()
	if _, ok := store.Element("title"); ok {
		t.Fatalf("expected element to be unbound")
	}
	if len(store.BoundIDs()) != 0 {
		t.Fatalf("expected no bound ids")
	}
}

func TestLoadFS_ValidatesCatalogLayout(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"locale mismatch": {
			"locales/en/page.yaml": {Data: []byte("locale: es\nnamespace: page\nmessages: {a: b}\n")},
		},
		"namespace mismatch": {
			"locales/en/page.yaml": {Data: []byte("locale: en\nnamespace: other\nmessages: {a: b}\n")},
		},
		"unsupported locale": {
			"locales/fr/page.yaml": {Data: []byte("locale: fr\nnamespace: page\nmessages: {a: b}\n")},
		},
		"missing primary": {
			"locales/es/page.yaml": {Data: []byte("locale: es\nnamespace: page\nmessages: {a: b}\n")},
		},
		"empty": {},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := i18n.LoadFS(fsys); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFS_StripsMarkup(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en/page.yaml": {Data: []byte("locale: en\nnamespace: page\nmessages:\n  title: \"<b>Bold</b> & <script>x()</script>plain\"\n")},
	}
	table, err := i18n.LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got, _ := table.Lookup(model.LanguagePrimary, "page.title")
	if got != "Bold & plain" {
		t.Fatalf("expected markup stripped, got %q", got)
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := i18n.TemplateFuncs(testTable(), i18n.TemplateConfig{})
	translate := funcs["translate"].(func(any, string, ...any) string)
	current := funcs["current_locale"].(func(any) string)

	if got := translate("es", "page.title"); got != "Estudio clínico" {
		t.Fatalf("translate = %q", got)
	}
	if got := translate(map[string]any{"language": "es"}, "submit.send"); got != "Enviando..." {
		t.Fatalf("translate via map = %q", got)
	}
	if got := translate("es", "missing", map[string]any{"default": "Fallback"}); got != "Fallback" {
		t.Fatalf("missing translation = %q", got)
	}
	if got := current(struct{ Language string }{Language: "es"}); got != "es" {
		t.Fatalf("current_locale = %q", got)
	}
}
