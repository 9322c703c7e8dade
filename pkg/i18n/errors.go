package i18n

import (
	"errors"
	"strings"
)

var (
	// ErrMissingTranslator is reported when a lookup runs without a table.
	ErrMissingTranslator = errors.New("i18n: translator is not configured")
	// ErrMissingTranslation is reported when a key has no entry in either the
	// requested or the primary language.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrUnsupportedLanguage is returned when callers select a language the
	// page does not ship.
	ErrUnsupportedLanguage = errors.New("i18n: unsupported language")
)

// MissingTranslationHandler decides what text to show when a lookup misses.
// args carries the original lookup params; a map param with a "default" key
// holds the caller's fallback text.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// missingTranslationDefault keeps the caller's fallback when one is supplied
// and returns an empty string otherwise, which bound elements interpret as
// "leave text unchanged".
func missingTranslationDefault(_ string, _ string, args []any, _ error) string {
	return defaultFromArgs(args)
}

// missingTranslationStrict surfaces the key itself so gaps are visible on the
// page during development.
func missingTranslationStrict(_ string, key string, args []any, _ error) string {
	if fallback := defaultFromArgs(args); fallback != "" {
		return fallback
	}
	return key
}

func defaultFromArgs(args []any) string {
	for _, arg := range args {
		params, ok := arg.(map[string]any)
		if !ok {
			continue
		}
		if value, ok := params["default"].(string); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
