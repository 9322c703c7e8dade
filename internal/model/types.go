package model

import "strings"

// Language identifies one of the two display languages the page supports.
type Language string

const (
	LanguagePrimary   Language = "en"
	LanguageSecondary Language = "es"
)

// Other returns the opposite supported language. Unknown values flip to the
// secondary language so a toggle from an unset state lands somewhere useful.
func (l Language) Other() Language {
	if l == LanguageSecondary {
		return LanguagePrimary
	}
	return LanguageSecondary
}

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	return l == LanguagePrimary || l == LanguageSecondary
}

// Code returns the uppercase indicator shown next to the language toggle.
func (l Language) Code() string {
	return strings.ToUpper(string(l))
}

// Languages lists the supported languages, primary first.
func Languages() []Language {
	return []Language{LanguagePrimary, LanguageSecondary}
}

// FieldKind selects the validation rule applied to a field.
type FieldKind string

const (
	FieldKindGeneric        FieldKind = "generic"
	FieldKindEmail          FieldKind = "email"
	FieldKindPhone          FieldKind = "phone"
	FieldKindBoundedInteger FieldKind = "boundedInteger"
)

// ErrorKind names the validation failure surfaced next to a field.
type ErrorKind string

const (
	ErrorKindNone     ErrorKind = ""
	ErrorKindRequired ErrorKind = "required"
	ErrorKindEmail    ErrorKind = "email"
	ErrorKindPhone    ErrorKind = "phone"
	ErrorKindAge      ErrorKind = "age"
)

// Option is a selectable value for select-style fields.
type Option struct {
	Value string              `json:"value" yaml:"value"`
	Label map[Language]string `json:"label,omitempty" yaml:"label,omitempty"`
}

// FieldSpec is the static description of a form input. Min and Max only apply
// to bounded integer fields.
type FieldSpec struct {
	Name           string              `json:"name"`
	Required       bool                `json:"required"`
	Kind           FieldKind           `json:"kind"`
	Min            int                 `json:"min,omitempty"`
	Max            int                 `json:"max,omitempty"`
	Input          string              `json:"input,omitempty"`
	LabelKey       string              `json:"labelKey,omitempty"`
	PlaceholderKey string              `json:"placeholderKey,omitempty"`
	Label          map[Language]string `json:"label,omitempty"`
	Placeholder    map[Language]string `json:"placeholder,omitempty"`
	Options        []Option            `json:"options,omitempty"`
}

// ValidationResult is the outcome of validating one field value.
type ValidationResult struct {
	Valid   bool      `json:"valid"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
}

// Step groups the fields shown on one page of a multi-page form.
type Step struct {
	ID     string              `json:"id"`
	Title  map[Language]string `json:"title,omitempty"`
	Fields []FieldSpec         `json:"fields"`
}

// FormModel is the configured form: one step for the contact-form variant,
// several for the enrollment wizard.
type FormModel struct {
	ID       string            `json:"id"`
	Endpoint string            `json:"endpoint,omitempty"`
	Method   string            `json:"method,omitempty"`
	Steps    []Step            `json:"steps"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Fields flattens the fields of every step in display order.
func (f FormModel) Fields() []FieldSpec {
	var out []FieldSpec
	for _, step := range f.Steps {
		out = append(out, step.Fields...)
	}
	return out
}

// Field looks up a field spec by name across all steps.
func (f FormModel) Field(name string) (FieldSpec, bool) {
	for _, step := range f.Steps {
		for _, field := range step.Fields {
			if field.Name == name {
				return field, true
			}
		}
	}
	return FieldSpec{}, false
}

// StepState is the step controller's position. Active is 1-based.
type StepState struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

// First reports whether the first step is active.
func (s StepState) First() bool { return s.Active <= 1 }

// Last reports whether the final step is active.
func (s StepState) Last() bool { return s.Active >= s.Total }
