package model

import internalmodel "github.com/goliatone/go-formflow/internal/model"

// Language re-exports the internal Language enumeration.
type Language = internalmodel.Language

const (
	LanguagePrimary   = internalmodel.LanguagePrimary
	LanguageSecondary = internalmodel.LanguageSecondary
)

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindGeneric        = internalmodel.FieldKindGeneric
	FieldKindEmail          = internalmodel.FieldKindEmail
	FieldKindPhone          = internalmodel.FieldKindPhone
	FieldKindBoundedInteger = internalmodel.FieldKindBoundedInteger
)

// ErrorKind re-exports the internal ErrorKind enumeration.
type ErrorKind = internalmodel.ErrorKind

const (
	ErrorKindNone     = internalmodel.ErrorKindNone
	ErrorKindRequired = internalmodel.ErrorKindRequired
	ErrorKindEmail    = internalmodel.ErrorKindEmail
	ErrorKindPhone    = internalmodel.ErrorKindPhone
	ErrorKindAge      = internalmodel.ErrorKindAge
)

type Option = internalmodel.Option
type FieldSpec = internalmodel.FieldSpec
type ValidationResult = internalmodel.ValidationResult
type Step = internalmodel.Step
type FormModel = internalmodel.FormModel
type StepState = internalmodel.StepState

// Languages lists the supported languages, primary first.
func Languages() []Language { return internalmodel.Languages() }

// ParseLanguage maps a language code or BCP-47 tag onto a supported language.
func ParseLanguage(raw string) (Language, bool) { return internalmodel.ParseLanguage(raw) }

// MatchAcceptLanguage picks a supported language from an Accept-Language header.
func MatchAcceptLanguage(header string) Language { return internalmodel.MatchAcceptLanguage(header) }

// DefaultLabeler derives a display label from a field name.
func DefaultLabeler(name string) string { return internalmodel.DefaultLabeler(name) }
