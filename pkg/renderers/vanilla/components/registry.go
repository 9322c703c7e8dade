// Package components renders individual form controls for the vanilla
// renderer. Each component is a named Descriptor; callers may override the
// defaults or add their own.
package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	rendertemplate "github.com/goliatone/go-formflow/pkg/render/template"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Renderer writes the markup for one control into buf.
type Renderer func(buf *bytes.Buffer, field session.FieldView, data ComponentData) error

// ComponentData carries render-time helpers.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// ControlID is the id attribute of the control; ErrorID the id of its
	// inline error element.
	ControlID string
	ErrorID   string
	// Partials maps partial keys (forms.input) onto theme template overrides.
	Partials map[string]string
}

// Script describes a script a component needs emitted once per page.
type Script struct {
	Src    string
	Inline string
	Defer  bool
}

// Descriptor bundles the renderer with its asset dependencies.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry tracks descriptors keyed by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// Clone returns a copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with name, replacing any existing entry.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets collects the deduplicated stylesheets and scripts of names.
func (r *Registry) Assets(names []string) (stylesheets []string, scripts []Script) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if _, exists := seenStyles[href]; href == "" || exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			key := "src:" + script.Src
			if script.Src == "" {
				key = "inline:" + script.Inline
			}
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

// ResolveName picks the component for an input type.
func ResolveName(input string) string {
	switch normalize(input) {
	case NameSelect:
		return NameSelect
	case NameTextarea:
		return NameTextarea
	default:
		return NameInput
	}
}

// NewDefaultRegistry returns a registry with the built-in input, select and
// textarea components, each rendered from a template partial.
func NewDefaultRegistry() *Registry {
	registry := New()
	registry.MustRegister(NameInput, Descriptor{Renderer: templateRenderer("forms.input", "templates/components/input.tmpl")})
	registry.MustRegister(NameTextarea, Descriptor{Renderer: templateRenderer("forms.textarea", "templates/components/textarea.tmpl")})
	registry.MustRegister(NameSelect, Descriptor{Renderer: templateRenderer("forms.select", "templates/components/select.tmpl")})
	return registry
}

func templateRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field session.FieldView, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}
		resolved := templateName
		if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
			resolved = candidate
		}
		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{
			"field":      field,
			"control_id": data.ControlID,
			"error_id":   data.ErrorID,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
		Scripts:     slices.Clone(src.Scripts),
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
