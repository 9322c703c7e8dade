package wizard

import (
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// CatalogLocalizer adapts a message lookup, such as i18n.Store.T, into a
// Localizer.
func CatalogLocalizer(lookup validation.LookupFunc) Localizer {
	return func(res model.ValidationResult, spec model.FieldSpec) string {
		return validation.Localize(res, spec, lookup).Message
	}
}
