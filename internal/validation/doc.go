// Package validation describes structured validation failures and renders
// them as the report shown to someone editing a manifest file.
//
// A failure pairs a Path (field names and list indexes) with a Kind. The
// Kind decides the phrasing of the rendered line, so two failures at the
// same location read differently when one is a missing field and the other
// an unexpected one.
package validation
