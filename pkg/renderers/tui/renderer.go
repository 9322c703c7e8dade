// Package tui drives a session from a terminal. Wizard prompts through the
// steps with survey; Renderer prints a session view as text or JSON for
// scripting.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Renderer implements render.Renderer for terminals.
type Renderer struct {
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a renderer; pretty text is the default output.
func New(opts ...Option) (*Renderer, error) {
	cfg := newOptions(opts)
	return &Renderer{outputFormat: cfg.outputFormat, theme: cfg.theme}, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, view session.View, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.outputFormat == OutputFormatJSON {
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode view: %w", err)
		}
		return out, nil
	}
	return []byte(r.pretty(view)), nil
}

func (r *Renderer) pretty(view session.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", view.Text("page.title"), view.Indicator)
	if subtitle := view.Text("page.subtitle"); subtitle != "" {
		fmt.Fprintf(&b, "%s\n", subtitle)
	}
	b.WriteByte('\n')
	if view.Step.Total > 1 {
		fmt.Fprintf(&b, "%s\n", view.StepLabel)
	}
	if view.StepTitle != "" {
		fmt.Fprintf(&b, "%s\n", view.StepTitle)
	}
	for _, field := range view.Fields {
		marker := ""
		if field.Required {
			marker = "*"
		}
		fmt.Fprintf(&b, "  %s%s: %s\n", field.Label, marker, displayValue(field))
		if field.Error != "" {
			fmt.Fprintf(&b, "    %s%s\n", r.theme.ErrorPrefix, field.Error)
		}
	}
	control := view.Control.Label
	if view.Step.Active < view.Step.Total {
		control = view.Text("submit.next")
	}
	fmt.Fprintf(&b, "\n[ %s ]\n", control)
	if n := view.Notification; n != nil {
		fmt.Fprintf(&b, "%s%s\n", r.theme.prefix(n.Kind), n.Message)
	}
	return b.String()
}

func displayValue(field session.FieldView) string {
	for _, opt := range field.Options {
		if opt.Selected {
			return opt.Label
		}
	}
	return field.Value
}

func (t Theme) prefix(kind notify.Kind) string {
	switch kind {
	case notify.KindSuccess:
		return t.SuccessPrefix
	case notify.KindError:
		return t.ErrorPrefix
	default:
		return t.InfoPrefix
	}
}
