package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

const catalogGlob = "locales/*/*.yaml"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var (
	defaultOnce  sync.Once
	defaultTable *MessageTable
	defaultErr   error

	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Default returns the embedded English/Spanish message table. It panics if the
// embedded catalogs are malformed, which only a broken build can cause.
func Default() *MessageTable {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = LoadFS(embeddedCatalogFS)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultTable
}

// EmbeddedFS exposes the embedded catalogs so tooling can lint or copy them.
func EmbeddedFS() fs.FS {
	return embeddedCatalogFS
}

// LoadDir loads catalogs laid out as <dir>/locales/<lang>/<namespace>.yaml.
func LoadDir(dir string) (*MessageTable, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("i18n: catalog dir is required")
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads every locales/<lang>/<namespace>.yaml file in fsys. Each file
// must declare a locale and namespace matching its path; messages are keyed
// as "<namespace>.<key>" and stripped of markup.
func LoadFS(fsys fs.FS) (*MessageTable, error) {
	if fsys == nil {
		return nil, fmt.Errorf("i18n: catalog filesystem is nil")
	}
	paths, err := fs.Glob(fsys, catalogGlob)
	if err != nil {
		return nil, fmt.Errorf("i18n: glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("i18n: no catalog files found")
	}
	sort.Strings(paths)

	messages := make(map[model.Language]map[string]string)
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("i18n: read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("i18n: parse catalog %s: %w", p, err)
		}
		lang, err := checkCatalogFile(p, file)
		if err != nil {
			return nil, err
		}
		if messages[lang] == nil {
			messages[lang] = make(map[string]string)
		}
		for key, value := range file.Messages {
			fullKey := file.Namespace + "." + strings.TrimSpace(key)
			if _, exists := messages[lang][fullKey]; exists {
				return nil, fmt.Errorf("i18n: catalog %s redefines %q", p, fullKey)
			}
			messages[lang][fullKey] = sanitizeText(value)
		}
	}

	if len(messages[model.LanguagePrimary]) == 0 {
		return nil, fmt.Errorf("i18n: primary language %s is not defined in catalogs", model.LanguagePrimary)
	}
	return NewMessageTable(messages), nil
}

func checkCatalogFile(p string, file catalogFile) (model.Language, error) {
	localeFromPath := path.Base(path.Dir(p))
	namespaceFromPath := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return "", fmt.Errorf("i18n: catalog %s: locale is required", p)
	}
	if locale != localeFromPath {
		return "", fmt.Errorf("i18n: catalog %s: locale %q must match path locale %q", p, locale, localeFromPath)
	}
	lang, ok := model.ParseLanguage(locale)
	if !ok {
		return "", fmt.Errorf("i18n: catalog %s: %w %q", p, ErrUnsupportedLanguage, locale)
	}
	if strings.TrimSpace(file.Namespace) == "" {
		return "", fmt.Errorf("i18n: catalog %s: namespace is required", p)
	}
	if file.Namespace != namespaceFromPath {
		return "", fmt.Errorf("i18n: catalog %s: namespace %q must match filename namespace %q", p, file.Namespace, namespaceFromPath)
	}
	if file.Messages == nil {
		return "", fmt.Errorf("i18n: catalog %s: messages map is required", p)
	}
	return lang, nil
}

// sanitizeText strips markup from catalog values. Catalog text is rendered as
// plain text everywhere, so any tag in a translation is a mistake.
func sanitizeText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	cleaned := strings.TrimSpace(textPolicy.Sanitize(raw))
	return unescapeEntities(cleaned)
}

// bluemonday escapes the characters it keeps; templates escape again on
// output, so undo the common entities here.
func unescapeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&#34;", `"`,
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(s)
}
