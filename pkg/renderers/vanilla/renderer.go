// Package vanilla renders a session as a self-contained HTML page: language
// modal, step indicator, the active step's fields, notification and share
// button. Every control posts back to the server so the page works without
// JavaScript; formflow.js adds keyboard shortcuts, blur validation and the
// share flow on top.
package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"strings"
	"time"

	gotemplatepkg "github.com/goliatone/go-template"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/render"
	rendertemplate "github.com/goliatone/go-formflow/pkg/render/template"
	gotemplate "github.com/goliatone/go-formflow/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formflow/pkg/session"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	manifest         *theme.Manifest
	components       *components.Registry
	goTemplate       bool
	goTemplateOpts   []gotemplatepkg.Option
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithGoTemplateOptions renders through go-template's engine instead of the
// built-in pongo2 adapter. The template bundle and ".tmpl" extension are
// always set; opts are applied after them.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.goTemplate = true
		cfg.goTemplateOpts = append(cfg.goTemplateOpts, opts...)
	}
}

// WithTheme replaces the built-in theme manifest.
func WithTheme(manifest *theme.Manifest) Option {
	return func(cfg *config) {
		if manifest != nil {
			cfg.manifest = manifest
		}
	}
}

// WithComponents replaces the control registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	themes     *themes
	components *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil && cfg.goTemplate {
		engine, err := gotemplate.NewGoTemplate(cfg.templateFS, ".tmpl", cfg.goTemplateOpts...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure go-template: %w", err)
		}
		renderer = engine
	}
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	themes, err := newThemes(cfg.manifest)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		templates:  renderer,
		themes:     themes,
		components: cfg.components,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type fieldMarkup struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`
	Error     string `json:"error"`
	ControlID string `json:"control_id"`
	ErrorID   string `json:"error_id"`
	Control   string `json:"control"`
}

func (r *Renderer) Render(ctx context.Context, view session.View, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	th := r.themes.resolve(options.ThemeVariant)
	prefix := strings.TrimRight(options.ActionPrefix, "/")

	fields := make([]fieldMarkup, 0, len(view.Fields))
	used := make([]string, 0, len(view.Fields))
	for _, field := range view.Fields {
		name := components.ResolveName(field.Input)
		descriptor, ok := r.components.Descriptor(name)
		if !ok {
			return nil, fmt.Errorf("vanilla renderer: no component %q for field %q", name, field.Name)
		}
		used = append(used, name)

		controlID := "ff-" + field.Name
		errorID := controlID + "-error"
		var buf bytes.Buffer
		if err := descriptor.Renderer(&buf, field, components.ComponentData{
			Template:  r.templates,
			ControlID: controlID,
			ErrorID:   errorID,
			Partials:  th.Partials,
		}); err != nil {
			return nil, fmt.Errorf("vanilla renderer: field %q: %w", field.Name, err)
		}
		fields = append(fields, fieldMarkup{
			Name:      field.Name,
			Label:     field.Label,
			Required:  field.Required,
			Error:     field.Error,
			ControlID: controlID,
			ErrorID:   errorID,
			Control:   buf.String(),
		})
	}

	stylesheets, scripts := r.pageAssets(th, prefix, used)

	data := map[string]any{
		"view":                view,
		"copy":                pageCopy(view),
		"fields":              fields,
		"hidden_inputs":       hiddenInputs(options.Hidden),
		"prefix":              prefix,
		"share_url":           strings.TrimSpace(options.ShareURL),
		"is_first":            view.Step.Active <= 1,
		"is_last":             view.Step.Active >= view.Step.Total,
		"classes":             chromeClasses(),
		"stylesheets":         stylesheets,
		"scripts":             scripts,
		"notification_ttl_ms": notificationTTL(options).Milliseconds(),
		"theme": map[string]any{
			"name":           th.Name,
			"variant":        th.Variant,
			"css_vars_style": th.CSSVarsStyle(),
		},
	}
	if view.Notification != nil {
		data["notification_color"] = th.NotificationColor(view.Notification.Kind)
	}

	result, err := r.templates.RenderTemplate(pageTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) pageAssets(th Theme, prefix string, used []string) ([]string, []components.Script) {
	var stylesheets []string
	var scripts []components.Script
	if href := th.AssetURL(AssetStylesheet); href != "" {
		stylesheets = append(stylesheets, withPrefix(prefix, href))
	}
	if src := th.AssetURL(AssetScript); src != "" {
		scripts = append(scripts, components.Script{Src: withPrefix(prefix, src), Defer: true})
	}
	extraStyles, extraScripts := r.components.Assets(used)
	stylesheets = append(stylesheets, extraStyles...)
	scripts = append(scripts, extraScripts...)
	return stylesheets, scripts
}

func withPrefix(prefix, href string) string {
	if prefix == "" || strings.Contains(href, "://") || !strings.HasPrefix(href, "/") {
		return href
	}
	return prefix + href
}

func pageCopy(view session.View) map[string]string {
	return map[string]string{
		"title":         view.Text("page.title"),
		"subtitle":      view.Text("page.subtitle"),
		"modal_title":   view.Text("page.modal_title"),
		"modal_english": view.Text("page.modal_english"),
		"modal_spanish": view.Text("page.modal_spanish"),
		"toggle_hint":   view.Text("page.toggle_hint"),
		"form_title":    view.Text("page.form_title"),
		"next":          view.Text("submit.next"),
		"back":          view.Text("submit.back"),
		"share_title":   view.Text("share.title"),
		"share_text":    view.Text("share.text"),
	}
}

func hiddenInputs(hidden map[string]string) string {
	var b strings.Builder
	for _, field := range render.SortedHiddenFields(hidden) {
		fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s">`,
			html.EscapeString(field.Name), html.EscapeString(field.Value))
	}
	return b.String()
}

func notificationTTL(options render.RenderOptions) time.Duration {
	if options.NotificationTTL > 0 {
		return options.NotificationTTL
	}
	return notify.DefaultTTL
}
