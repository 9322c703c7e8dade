package i18n

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Translator resolves a message key for a locale. Params are either
// map[string]any values whose entries replace "{name}" placeholders, or plain
// values handed to fmt.Sprintf when the message contains verbs.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MessageTable maps (language, key) to display text. Tables are immutable once
// built; reloads construct a new table.
type MessageTable struct {
	messages map[model.Language]map[string]string
}

// NewMessageTable copies messages into a table.
func NewMessageTable(messages map[model.Language]map[string]string) *MessageTable {
	table := &MessageTable{messages: make(map[model.Language]map[string]string, len(messages))}
	for lang, entries := range messages {
		cloned := make(map[string]string, len(entries))
		for key, value := range entries {
			cloned[strings.TrimSpace(key)] = value
		}
		table.messages[lang] = cloned
	}
	return table
}

// Lookup returns the entry for key under lang, falling back to the primary
// language. A miss returns ("", false).
func (t *MessageTable) Lookup(lang model.Language, key string) (string, bool) {
	if t == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	if msg, ok := t.messages[lang][key]; ok && strings.TrimSpace(msg) != "" {
		return msg, true
	}
	if msg, ok := t.messages[model.LanguagePrimary][key]; ok && strings.TrimSpace(msg) != "" {
		return msg, true
	}
	return "", false
}

// Translate implements Translator. locale may be any tag ParseLanguage
// understands; unknown locales read the primary table.
func (t *MessageTable) Translate(locale, key string, args ...any) (string, error) {
	if t == nil {
		return "", ErrMissingTranslator
	}
	lang, ok := model.ParseLanguage(locale)
	if !ok {
		lang = model.LanguagePrimary
	}
	msg, ok := t.Lookup(lang, key)
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrMissingTranslation, lang, key)
	}
	return Format(msg, args...), nil
}

// Keys returns the sorted keys defined for lang (without fallback).
func (t *MessageTable) Keys(lang model.Language) []string {
	if t == nil {
		return nil
	}
	keys := make([]string, 0, len(t.messages[lang]))
	for key := range t.messages[lang] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Missing lists keys defined for the primary language that lang lacks.
func (t *MessageTable) Missing(lang model.Language) []string {
	if t == nil || lang == model.LanguagePrimary {
		return nil
	}
	var out []string
	for _, key := range t.Keys(model.LanguagePrimary) {
		if msg, ok := t.messages[lang][key]; !ok || strings.TrimSpace(msg) == "" {
			out = append(out, key)
		}
	}
	return out
}

// Format applies lookup params to msg. Map params fill "{name}" placeholders;
// remaining params go through fmt.Sprintf when msg carries a verb.
func Format(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}
	var positional []any
	for _, arg := range args {
		params, ok := arg.(map[string]any)
		if !ok {
			positional = append(positional, arg)
			continue
		}
		for name, value := range params {
			if name == "default" {
				continue
			}
			msg = strings.ReplaceAll(msg, "{"+name+"}", fmt.Sprint(value))
		}
	}
	if len(positional) > 0 && strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, positional...)
	}
	return msg
}
