package tui

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestRenderer_PrettyText(t *testing.T) {
	sess := testsupport.OpenSession(t, testsupport.Form(t, "enrollment"), nil)
	require.NoError(t, sess.SelectLanguage(context.Background(), model.LanguagePrimary))
	require.NoError(t, sess.Wizard().SetValue("email", "broken"))
	sess.Wizard().Advance()
	sess.ShareNotice(session.ShareCopied)

	r, err := New(WithPromptDriver(&stubDriver{}))
	require.NoError(t, err)
	assert.Equal(t, "tui", r.Name())
	assert.Equal(t, "text/plain; charset=utf-8", r.ContentType())

	out, err := r.Render(context.Background(), sess.View(), render.RenderOptions{})
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "[EN]")
	assert.Contains(t, text, "Step 1 of 3")
	assert.Contains(t, text, "Email*: broken")
	assert.Contains(t, text, "✖ Please enter a valid email address")
	assert.Contains(t, text, "[ Next ]")
	assert.Contains(t, text, "✔ Link copied to clipboard!")
}

func TestRenderer_JSON(t *testing.T) {
	sess := testsupport.OpenSession(t, testsupport.Form(t, "contact"), nil)

	r, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat(OutputFormatJSON))
	require.NoError(t, err)
	assert.Equal(t, "application/json", r.ContentType())

	out, err := r.Render(context.Background(), sess.View(), render.RenderOptions{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "contact", decoded["formId"])
	assert.Equal(t, true, decoded["modalOpen"])
}

func TestRenderer_CancelledContext(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, session.View{}, render.RenderOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
