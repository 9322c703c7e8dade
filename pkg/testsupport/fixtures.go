// Package testsupport holds fixtures shared by the renderer and server tests.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/goliatone/go-formflow/pkg/formconfig"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/prefs"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// Form returns an embedded form variant, failing the test when it is missing.
func Form(t testing.TB, id string) model.FormModel {
	t.Helper()
	form, ok := formconfig.Default().Form(id)
	if !ok {
		t.Fatalf("testsupport: form %q not found", id)
	}
	return form
}

// ValidValues fills every field of form with a value that passes validation.
func ValidValues(form model.FormModel) map[string]string {
	out := make(map[string]string)
	for _, field := range form.Fields() {
		switch {
		case field.Name == "email" || field.Kind == model.FieldKindEmail:
			out[field.Name] = "parent@example.com"
		case field.Name == "phone" || field.Kind == model.FieldKindPhone:
			out[field.Name] = "(555) 123-4567"
		case field.Kind == model.FieldKindBoundedInteger:
			out[field.Name] = "4"
		case len(field.Options) > 0:
			out[field.Name] = field.Options[len(field.Options)-1].Value
		default:
			out[field.Name] = "Ana"
		}
	}
	return out
}

// OpenSession opens a session over form with in-memory preferences and a
// fast simulated sender. The session is closed when the test ends.
func OpenSession(t testing.TB, form model.FormModel, store prefs.Store) *session.Session {
	t.Helper()
	if store == nil {
		store = &prefs.Memory{}
	}
	sess, err := session.Open(context.Background(), session.Deps{
		Form:   form,
		Prefs:  store,
		Sender: submit.SimulatedSender{Delay: 5 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("testsupport: open session: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t testing.TB, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
