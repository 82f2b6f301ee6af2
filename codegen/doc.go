// Package codegen generates state enumeration methods for annotated Go
// sum types.
//
// Declarations are read from package sources with go/parser. A type is a
// schema when its doc comment carries an //enumstate: directive or when it
// is a struct embedding enumstate.Tag. Schemas are built and resolved,
// optionally type checked with go/packages, and emitted into one file per
// package, <package>_enumstate.go by default.
//
// # Related Packages
//
//   - github.com/signadot/enumstate/schema - Schema model and errors
//   - github.com/signadot/enumstate/resolve - Default resolution
//   - github.com/signadot/enumstate/emit - Source emission
package codegen
