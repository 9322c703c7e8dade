package vanilla

import (
	"fmt"
	"maps"
	"regexp"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formflow/pkg/notify"
)

// Asset keys looked up in the manifest's asset files.
const (
	AssetStylesheet = "vanilla.stylesheet"
	AssetScript     = "vanilla.script"
)

var cssTokenValue = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[0-9.]+(px|rem|em|%)?)$`)

// DefaultManifest describes the built-in look: brand colours, the three
// notification colours and the embedded component partials.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "formflow",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color.primary":        "#2563eb",
			"color.text":           "#1f2937",
			"color.background":     "#ffffff",
			"color.error":          "#dc2626",
			"notification.success": "#10b981",
			"notification.error":   "#dc2626",
			"notification.info":    "#3b82f6",
		},
		Templates: map[string]string{
			"forms.input":    "templates/components/input.tmpl",
			"forms.textarea": "templates/components/textarea.tmpl",
			"forms.select":   "templates/components/select.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				AssetStylesheet: StylesheetName,
				AssetScript:     ScriptName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color.text":       "#f9fafb",
					"color.background": "#111827",
					"color.primary":    "#60a5fa",
				},
			},
			"high-contrast": {
				Tokens: map[string]string{
					"color.primary":        "#000000",
					"color.text":           "#000000",
					"notification.success": "#065f46",
					"notification.error":   "#991b1b",
					"notification.info":    "#1e3a8a",
				},
			},
		},
	}
}

// Theme is a manifest resolved for one variant.
type Theme struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	Partials  map[string]string
	assetBase string
	assets    map[string]string
}

type themes struct {
	manifest *theme.Manifest
}

func newThemes(manifest *theme.Manifest) (*themes, error) {
	if manifest == nil {
		manifest = DefaultManifest()
	}
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("vanilla renderer: register theme %q: %w", manifest.Name, err)
	}
	return &themes{manifest: manifest}, nil
}

// resolve layers the named variant over the base manifest. Unknown variants
// resolve to the base.
func (t *themes) resolve(variant string) Theme {
	m := t.manifest
	resolved := Theme{
		Name:      m.Name,
		Tokens:    maps.Clone(m.Tokens),
		Partials:  maps.Clone(m.Templates),
		assetBase: m.Assets.Prefix,
		assets:    maps.Clone(m.Assets.Files),
	}
	if resolved.Tokens == nil {
		resolved.Tokens = make(map[string]string)
	}
	if resolved.Partials == nil {
		resolved.Partials = make(map[string]string)
	}
	if resolved.assets == nil {
		resolved.assets = make(map[string]string)
	}

	v, ok := m.Variants[strings.TrimSpace(variant)]
	if !ok {
		return resolved
	}
	resolved.Variant = strings.TrimSpace(variant)
	maps.Copy(resolved.Tokens, v.Tokens)
	maps.Copy(resolved.Partials, v.Templates)
	maps.Copy(resolved.assets, v.Assets.Files)
	if v.Assets.Prefix != "" {
		resolved.assetBase = v.Assets.Prefix
	}
	return resolved
}

// AssetURL returns the URL of the asset stored under key, or "" when the
// theme does not provide it.
func (t Theme) AssetURL(key string) string {
	file := strings.TrimSpace(t.assets[key])
	if file == "" {
		return ""
	}
	if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
		return file
	}
	return strings.TrimRight(t.assetBase, "/") + "/" + file
}

// CSSVars maps tokens onto --ff-* custom properties. Values that are not
// plain colours or lengths are skipped.
func (t Theme) CSSVars() map[string]string {
	out := make(map[string]string, len(t.Tokens))
	for key, value := range t.Tokens {
		value = strings.TrimSpace(value)
		if !cssTokenValue.MatchString(value) {
			continue
		}
		name := strings.NewReplacer(".", "-", "_", "-", " ", "-").Replace(strings.ToLower(key))
		out["--ff-"+name] = value
	}
	return out
}

// CSSVarsStyle renders CSSVars as a declaration list.
func (t Theme) CSSVarsStyle() string {
	vars := t.CSSVars()
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteByte(';')
	}
	return b.String()
}

// NotificationColor returns the background for a notification kind.
func (t Theme) NotificationColor(kind notify.Kind) string {
	if color := t.Tokens["notification."+string(kind)]; color != "" {
		return color
	}
	return t.Tokens["notification."+string(notify.KindInfo)]
}
