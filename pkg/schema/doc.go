// Package schema provides the typed parameter schema for clinical tools.
//
// Parameters arrive as map[string]any at the serialization boundary and are
// validated against an ordered list of typed, constrained field descriptors
// before any tool logic runs. Decode then maps the validated data onto a
// concrete struct, so tool implementations work with real types.
package schema
