package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrInvalid is the sentinel wrapped by every FieldError.
var ErrInvalid = errors.New("validation: invalid field")

// jsSpace is the whitespace set browsers match with \s. RE2's \s is ASCII
// only, so NBSP and the Unicode spaces are listed explicitly.
const jsSpace = `\s\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	emailPattern = regexp.MustCompile(`^[^` + jsSpace + `@]+@[^` + jsSpace + `@]+\.[^` + jsSpace + `@]+$`)
	phonePattern = regexp.MustCompile(`^[\d` + jsSpace + `\-\+\(\)]+$`)
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
)

// Field names that carry an implied kind when the field spec leaves it generic,
// mirroring the markup the page binds by name.
const (
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldChildAge = "childAge"
)

// FieldError reports a failed field and why.
type FieldError struct {
	Field string
	Kind  model.ErrorKind
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation: field %q failed %s check", e.Field, e.Kind)
}

// Unwrap lets errors.Is match ErrInvalid.
func (e *FieldError) Unwrap() error { return ErrInvalid }

// InferKind returns spec.Kind, or the kind implied by well-known field names
// when the field spec is generic.
func InferKind(spec model.FieldSpec) model.FieldKind {
	if spec.Kind != "" && spec.Kind != model.FieldKindGeneric {
		return spec.Kind
	}
	switch spec.Name {
	case FieldEmail:
		return model.FieldKindEmail
	case FieldPhone:
		return model.FieldKindPhone
	case FieldChildAge:
		return model.FieldKindBoundedInteger
	default:
		return model.FieldKindGeneric
	}
}

// Validate checks raw against spec. It is pure: no annotation or lookup
// happens here, and Message is left empty for Localize to fill.
func Validate(spec model.FieldSpec, raw string) model.ValidationResult {
	value := strings.TrimSpace(raw)

	if value == "" {
		if spec.Required {
			return failed(model.ErrorKindRequired)
		}
		return model.ValidationResult{Valid: true}
	}

	switch InferKind(spec) {
	case model.FieldKindEmail:
		if !emailPattern.MatchString(value) {
			return failed(model.ErrorKindEmail)
		}
	case model.FieldKindPhone:
		if !phonePattern.MatchString(value) {
			return failed(model.ErrorKindPhone)
		}
	case model.FieldKindBoundedInteger:
		n, ok := ParseLeadingInt(value)
		if !ok || n < spec.Min || n > spec.Max {
			return failed(model.ErrorKindAge)
		}
	}
	return model.ValidationResult{Valid: true}
}

// ParseLeadingInt parses the integer prefix of s, so "4 years" reads as 4
// and "abc" fails.
func ParseLeadingInt(s string) (int, bool) {
	match := leadingInt.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsError converts a failed result into a *FieldError, or nil when valid.
func AsError(field string, result model.ValidationResult) error {
	if result.Valid {
		return nil
	}
	return &FieldError{Field: field, Kind: result.Kind}
}

func failed(kind model.ErrorKind) model.ValidationResult {
	return model.ValidationResult{Valid: false, Kind: kind}
}
