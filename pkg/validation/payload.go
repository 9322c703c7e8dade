package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrorMapping splits a backend error payload into field-level and form-level
// messages keyed by field name.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates and normalises form-level messages, trimming
// whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises backend error payloads (JSON pointers such as
// "/body/email", JSONPath such as "$.phone", dotted paths) onto the form's
// field names. Unknown paths become form-level errors so messages are not
// lost.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := make(map[string]struct{})
	for _, field := range form.Fields() {
		if name := strings.TrimSpace(field.Name); name != "" {
			names[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		field, formLevel := mapErrorPath(rawPath, names)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[field] = append(mapping.Fields[field], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mapErrorPath returns the first path segment, after dropping request
// wrappers and array indices, that names a form field.
func mapErrorPath(raw string, names map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}
	segments := stripNumericSegments(dropWrapperSegments(parsePathSegments(trimmed)))
	for _, segment := range segments {
		if _, ok := names[segment]; ok {
			return segment, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}
	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"values":     {},
	}
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
