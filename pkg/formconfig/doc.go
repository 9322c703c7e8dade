// Package formconfig loads form variants (steps, fields, validation bounds,
// labels per language) from JSON or YAML documents. The embedded defaults
// ship the single-step "contact" form and the three-step "enrollment" wizard.
package formconfig
