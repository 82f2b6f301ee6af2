// Package enumstate is the run-time support for state enumerations
// generated by enumstate-gen.
//
// A state enumeration is a sum type whose values can report their
// identity, list their siblings and move to the next, previous, first, last
// or default state. Two declaration shapes are understood by the generator.
// Unit-only enumerations are integer types with constants:
//
//	//enumstate:default(StatsTab)
//	type MainFocus int
//
//	const (
//		StatsTab MainFocus = iota
//		GraphsTab
//		InfoTab
//	)
//
// Enumerations whose variants carry data are structs embedding [Tag], one
// field per variant:
//
//	//enumstate:auto
//	type AppFocus struct {
//		enumstate.Tag
//		MainWindow  MainFocus
//		OtherWindow struct{}
//	}
//
// Generated types satisfy [Cycler].
//
// # Related Packages
//
//   - github.com/signadot/enumstate/codegen - declaration parsing and the generation pipeline
//   - github.com/signadot/enumstate/resolve - default resolution
//   - github.com/signadot/enumstate/emit - generated operations
package enumstate

import "iter"

// Tag holds the ordinal of the active variant of a struct-form enumeration.
// It is embedded, so composite literals set it as Tag: n.
type Tag int

// Enum is the read side of a generated state enumeration.
type Enum[T any] interface {
	// Index is the ordinal of the active variant, or -1 when the value
	// holds no declared variant.
	Index() int
	Name() string

	Default() T
	First() T
	Last() T
	Size() int
	Names() []string
	FromIndex(i int) (T, bool)
	AllStates() iter.Seq[T]
}

// Cycler is implemented by pointers to generated state enumerations.
type Cycler[T any] interface {
	Enum[T]
	Next()
	Previous()
	Skip(n int)
	SkipBackward(n int)
}
