package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/pkg/formconfig"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submit"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("FORMFLOW_FORMS_FILE", "")
	t.Setenv("FORMFLOW_CATALOG_DIR", "")
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseKind(t *testing.T) {
	cases := map[string]model.FieldKind{
		"email":          model.FieldKindEmail,
		" Phone ":        model.FieldKindPhone,
		"age":            model.FieldKindBoundedInteger,
		"boundedInteger": model.FieldKindBoundedInteger,
		"generic":        model.FieldKindGeneric,
	}
	for raw, want := range cases {
		got, err := parseKind(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := parseKind("zipcode")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, _, err := execute(t, "validate", "email", "parent@example.org")
	require.NoError(t, err)
	assert.Equal(t, "valid\n", out)

	out, _, err = execute(t, "validate", "age", "7", "--lang", "es")
	require.Error(t, err)
	assert.Contains(t, out, "Por favor selecciona una edad válida (4-5 años)")

	_, _, err = execute(t, "validate", "age", "4", "--lang", "fr")
	assert.ErrorContains(t, err, "unsupported language")
}

func TestFormsCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "forms", "--json")
	require.NoError(t, err)

	var got []formSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	want := summarizeForms(formconfig.Default())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
	require.NotEmpty(t, got)
}

func TestWriteForms_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeForms(&buf, []formSummary{{ID: "contact", Steps: 1, Fields: []string{"email", "phone"}}}, false))
	assert.Equal(t, "contact\t1 step(s)\temail, phone\n", buf.String())
}

func TestLintTable(t *testing.T) {
	table := i18n.NewMessageTable(map[model.Language]map[string]string{
		model.LanguagePrimary: {
			"a.ok":      "Hello {name}",
			"b.missing": "Only English",
			"c.args":    "Between {min} and {max}",
		},
		model.LanguageSecondary: {
			"a.ok":   "Hola {name}",
			"c.args": "Entre {min} y {maximo}",
		},
	})
	got := lintTable(table)
	want := []violation{
		{language: model.LanguageSecondary, key: "b.missing", message: "missing translation"},
		{language: model.LanguageSecondary, key: "c.args", message: "placeholders differ from primary"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(violation{})); diff != "" {
		t.Fatalf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestLintTable_DefaultCatalogIsClean(t *testing.T) {
	assert.Empty(t, lintTable(i18n.Default()))
}

func TestLintCommand(t *testing.T) {
	out, _, err := execute(t, "lint-catalogs")
	require.NoError(t, err)
	assert.Equal(t, "catalogs ok\n", out)
}

func TestSenderSelection(t *testing.T) {
	a := &app{}
	a.cfg.SimulatedDelay = 0
	_, simulated := a.sender(model.FormModel{}).(submit.SimulatedSender)
	assert.True(t, simulated)

	a.cfg.SubmitEndpoint = "https://example.org/contact"
	sender, ok := a.sender(model.FormModel{Method: "POST"}).(submit.HTTPSender)
	require.True(t, ok)
	assert.Equal(t, "https://example.org/contact", sender.Endpoint)
}

func TestUnknownForm(t *testing.T) {
	a := &app{}
	_, err := a.form("nope")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not found"))
}

func TestNewRenderers(t *testing.T) {
	for _, engine := range []string{"", config.EnginePongo2, config.EngineGoTemplate} {
		registry, err := newRenderers(engine)
		require.NoError(t, err, engine)
		assert.ElementsMatch(t, []string{"tui", "vanilla"}, registry.List(), engine)
	}
}
