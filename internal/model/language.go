package model

import (
	"strings"

	"golang.org/x/text/language"
)

var (
	supportedTags = []language.Tag{language.English, language.Spanish}
	tagMatcher    = language.NewMatcher(supportedTags)
)

// ParseLanguage maps a raw language code or BCP-47 tag ("es", "es-MX", "EN")
// onto a supported language. The boolean is false when the input does not
// name either supported base language.
func ParseLanguage(raw string) (Language, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	switch base.String() {
	case string(LanguagePrimary):
		return LanguagePrimary, true
	case string(LanguageSecondary):
		return LanguageSecondary, true
	default:
		return "", false
	}
}

// MatchAcceptLanguage picks the best supported language for an
// Accept-Language header value. Unparseable or unmatched headers resolve to
// the primary language.
func MatchAcceptLanguage(header string) Language {
	header = strings.TrimSpace(header)
	if header == "" {
		return LanguagePrimary
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return LanguagePrimary
	}
	_, idx, confidence := tagMatcher.Match(tags...)
	if confidence == language.No || idx < 0 || idx >= len(supportedTags) {
		return LanguagePrimary
	}
	if idx == 1 {
		return LanguageSecondary
	}
	return LanguagePrimary
}
