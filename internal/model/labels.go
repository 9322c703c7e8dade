package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler converts a field name into a human-friendly label. It splits
// on underscores/dashes and camelCase boundaries, so "childAge" becomes
// "Child Age".
func DefaultLabeler(name string) string {
	if name == "" {
		return ""
	}

	words := splitWordsPattern.Split(name, -1)
	var segments []string
	for _, word := range words {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(splitCamel(word)))
	}
	return strings.TrimSpace(strings.Join(segments, " "))
}

// LabelFor returns the field label in lang, falling back to the primary
// language and finally to the derived label.
func (f FieldSpec) LabelFor(lang Language) string {
	if text := pick(f.Label, lang); text != "" {
		return text
	}
	return DefaultLabeler(f.Name)
}

// PlaceholderFor returns the placeholder text in lang or the primary language.
func (f FieldSpec) PlaceholderFor(lang Language) string {
	return pick(f.Placeholder, lang)
}

// TitleFor returns the step title in lang or the primary language.
func (s Step) TitleFor(lang Language) string {
	return pick(s.Title, lang)
}

// LabelFor returns the option label in lang, defaulting to the raw value.
func (o Option) LabelFor(lang Language) string {
	if text := pick(o.Label, lang); text != "" {
		return text
	}
	return o.Value
}

func pick(values map[Language]string, lang Language) string {
	if len(values) == 0 {
		return ""
	}
	if text := strings.TrimSpace(values[lang]); text != "" {
		return text
	}
	return strings.TrimSpace(values[LanguagePrimary])
}

func splitCamel(input string) string {
	var out strings.Builder
	for i, r := range input {
		if i > 0 && isBoundary(input, i, r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isBoundary(input string, index int, r rune) bool {
	prev := rune(input[index-1])
	return (isLower(prev) && isUpper(r)) || (isLetter(prev) && isDigit(r)) || (isDigit(prev) && isLetter(r))
}

func isUpper(r rune) bool  { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool  { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
