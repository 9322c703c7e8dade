package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	extension  string
	templateFn map[string]any
	globalData map[string]any
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helpers: pongo2 filter functions become filters,
// other funcs become globals callable from templates.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			if cfg.templateFn == nil {
				cfg.templateFn = make(map[string]any, len(funcs))
			}
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithTranslator exposes the catalog helpers from i18n.TemplateFuncs
// (translate, current_locale) to every template.
func WithTranslator(t i18n.Translator, cfg i18n.TemplateConfig) Option {
	return WithTemplateFunc(i18n.TemplateFuncs(t, cfg))
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			if cfg.globalData == nil {
				cfg.globalData = make(map[string]any, len(data))
			}
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// NewGoTemplate builds go-template's own engine over files. Data is
// normalised the same way as Engine's before it reaches the engine, and
// template names are passed without the extension, which go-template appends.
func NewGoTemplate(files fs.FS, ext string, extra ...gotemplatepkg.Option) (template.TemplateRenderer, error) {
	if files == nil {
		return nil, errors.New("gotemplate: go-template engine needs an fs.FS")
	}
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	registerDefaultFilters()
	opts := []gotemplatepkg.Option{gotemplatepkg.WithFS(files)}
	if ext != "" {
		opts = append(opts, gotemplatepkg.WithExtension(ext))
	}
	engine, err := gotemplatepkg.NewRenderer(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: build go-template engine: %w", err)
	}
	return &normalized{next: engine, ext: ext}, nil
}

type normalized struct {
	next template.TemplateRenderer
	ext  string
}

func (n *normalized) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return n.RenderString(name, data, out...)
	}
	return n.RenderTemplate(name, data, out...)
}

func (n *normalized) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	ctx, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}
	if n.ext != "" {
		name = strings.TrimSuffix(name, n.ext)
	}
	return n.next.RenderTemplate(name, map[string]any(ctx), out...)
}

func (n *normalized) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	ctx, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}
	return n.next.RenderString(templateContent, map[string]any(ctx), out...)
}

func (n *normalized) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	return n.next.RegisterFilter(name, fn)
}

func (n *normalized) GlobalContext(data any) error {
	ctx, err := convertToContext(data)
	if err != nil {
		return err
	}
	return n.next.GlobalContext(map[string]any(ctx))
}

// Engine implements template.TemplateRenderer on a pongo2 template set.
// Parsed templates are cached by path.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Either a base dir or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("formflow", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
		}
	}
	return engine, nil
}

// Render treats name as inline template content when it contains template
// tags, and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template, appending the configured
// extension when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.tplExt) {
		path += e.tplExt
	}
	tmpl, err := e.getTemplate(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, data, fmt.Sprintf("template %q", path), out)
}

// RenderString parses and renders templateContent.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return e.execute(tmpl, data, "template string", out)
}

func (e *Engine) execute(tmpl *pongo2.Template, data any, label string, out []io.Writer) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// RegisterFilter registers a global pongo2 filter. Filter names are process
// wide; registering an existing name is an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}
	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	if name == "" || fn == nil {
		return nil
	}
	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(name) {
			return nil
		}
		return pongo2.RegisterFilter(name, filter)
	}
	if !isCallable(fn) {
		return fmt.Errorf("not a function: %T", fn)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[name] = fn
	return nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

// convertToContext flattens structs into plain maps through their JSON form
// so templates address fields by their json names.
func convertToContext(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		decoded, err := jsonRoundTrip(v)
		if err != nil {
			return nil, err
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("template data must encode to an object, got %T", decoded)
		}
		in = m
	}

	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil || isCallable(value) {
		return value, nil
	}
	switch v := value.(type) {
	case string, bool, int:
		return v, nil
	case float64:
		return wholeNumber(v), nil
	case pongo2.Context:
		return convertMap(v)
	case map[string]any:
		return convertMap(v)
	case []any:
		return convertSlice(v)
	}
	decoded, err := jsonRoundTrip(value)
	if err != nil {
		return nil, err
	}
	switch d := decoded.(type) {
	case map[string]any:
		return convertMap(d)
	case []any:
		return convertSlice(d)
	case float64:
		return wholeNumber(d), nil
	default:
		return d, nil
	}
}

// wholeNumber keeps integral JSON numbers printable as integers; pongo2
// formats floats with a fixed six-digit precision.
func wholeNumber(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int(v)
	}
	return v
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonRoundTrip(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("css_color") {
		_ = pongo2.RegisterFilter("css_color", filterCSSColor)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterCSSColor passes through hex colours and CSS var() references and
// blanks anything else, so theme tokens cannot inject markup into a style
// attribute.
func filterCSSColor(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	value := strings.TrimSpace(in.String())
	if isHexColor(value) || (strings.HasPrefix(value, "var(--") && strings.HasSuffix(value, ")") && !strings.ContainsAny(value, "<>;\"'")) {
		return pongo2.AsValue(value), nil
	}
	return pongo2.AsValue(""), nil
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
