// Package model defines the typed form model shared by the validator, the step
// controller, and the renderers. The types live in internal/model and are
// re-exported here so callers depend on a single import path.
//
// A FormModel is an ordered list of steps; each step lists FieldSpecs that
// carry their validation kind (generic, email, phone, bounded integer),
// requiredness, and per-language label/placeholder text. Bounds for bounded
// integer fields are configuration, never constants, so the contact form
// (ages 4-5) and the enrollment wizard (ages 4-6) share one implementation.
package model
