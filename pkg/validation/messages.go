package validation

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Message keys in the "validation" catalog namespace.
const (
	KeyRequired = "validation.required"
	KeyEmail    = "validation.email"
	KeyPhone    = "validation.phone"
	KeyAge      = "validation.age"
)

// LookupFunc resolves a catalog key in the caller's active language.
type LookupFunc func(key string, args ...any) string

// MessageKey returns the catalog key for an error kind.
func MessageKey(kind model.ErrorKind) string {
	switch kind {
	case model.ErrorKindRequired:
		return KeyRequired
	case model.ErrorKindEmail:
		return KeyEmail
	case model.ErrorKindPhone:
		return KeyPhone
	case model.ErrorKindAge:
		return KeyAge
	default:
		return ""
	}
}

// Localize fills result.Message using lookup. Age messages receive the
// field's bounds as {min}/{max}. Valid results pass through unchanged.
func Localize(result model.ValidationResult, spec model.FieldSpec, lookup LookupFunc) model.ValidationResult {
	if result.Valid || lookup == nil {
		return result
	}
	key := MessageKey(result.Kind)
	if key == "" {
		return result
	}
	params := map[string]any{"field": spec.Name}
	if result.Kind == model.ErrorKindAge {
		params["min"] = spec.Min
		params["max"] = spec.Max
	}
	if msg := strings.TrimSpace(lookup(key, params)); msg != "" {
		result.Message = msg
	}
	return result
}

// Report collects per-field results for a group of fields, in field order.
type Report struct {
	Order   []string
	Results map[string]model.ValidationResult
}

// Valid reports whether every field passed.
func (r Report) Valid() bool {
	for _, result := range r.Results {
		if !result.Valid {
			return false
		}
	}
	return true
}

// Failed lists failing field names in field order.
func (r Report) Failed() []string {
	var out []string
	for _, name := range r.Order {
		if result, ok := r.Results[name]; ok && !result.Valid {
			out = append(out, name)
		}
	}
	return out
}

// ValidateFields validates each spec against values[spec.Name].
func ValidateFields(specs []model.FieldSpec, values map[string]string, lookup LookupFunc) Report {
	report := Report{
		Order:   make([]string, 0, len(specs)),
		Results: make(map[string]model.ValidationResult, len(specs)),
	}
	for _, spec := range specs {
		result := Localize(Validate(spec, values[spec.Name]), spec, lookup)
		report.Order = append(report.Order, spec.Name)
		report.Results[spec.Name] = result
	}
	return report
}
