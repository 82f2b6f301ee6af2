// Package schema models sum-type declarations annotated for enumstate
// generation: variants in declaration order, their field slots, and the
// default/first/last/auto attributes attached at type and variant level.
//
// Schemas are built from a [Decl] with [Build], which applies the attribute
// placement rules and validates the result. The error types of the whole
// generation pipeline live here as well.
package schema

import "fmt"

// Form is the Go shape of a declaration.
type Form int

const (
	// ConstForm is an integer type whose constants are the variants.
	ConstForm Form = iota
	// StructForm is a struct embedding enumstate.Tag whose fields are the variants.
	StructForm
)

func (f Form) String() string {
	switch f {
	case ConstForm:
		return "const"
	case StructForm:
		return "struct"
	default:
		return fmt.Sprintf("Form(%d)", int(f))
	}
}

// Policy selects how a state-capable slot obtains its default.
type Policy int

const (
	NoPolicy Policy = iota
	// First uses the nested type's ordinal 0 variant.
	First
	// Last uses the nested type's highest ordinal variant.
	Last
	// Auto uses the nested type's declared default, or its first variant.
	Auto
)

func (p Policy) String() string {
	switch p {
	case NoPolicy:
		return "none"
	case First:
		return "first"
	case Last:
		return "last"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Capability tells whether a slot's type can resolve its own default.
type Capability int

const (
	Opaque Capability = iota
	StateCapable
)

func (c Capability) String() string {
	if c == StateCapable {
		return "state-capable"
	}
	return "opaque"
}

// SumType is one sum-type declaration.
type SumType struct {
	Name string

	// PkgName and PkgPath identify the declaring package.
	PkgName string
	PkgPath string

	Form Form

	// Variants in declaration order; Variants[i].Ordinal == i.
	Variants []*Variant

	// Default is the type-level default, nil when ordinal 0 is implied.
	Default *TypeDefault

	// Policy is the type-level policy inherited by variants without their own.
	Policy Policy

	// Pos is the source position of the declaration, for diagnostics.
	Pos string
}

// Ref returns the reference other declarations use to name this type.
func (s *SumType) Ref() TypeRef {
	return TypeRef{PkgPath: s.PkgPath, PkgName: s.PkgName, Name: s.Name}
}

// Size is the number of variants.
func (s *SumType) Size() int {
	return len(s.Variants)
}

// Variant returns the variant called name, or nil.
func (s *SumType) Variant(name string) *Variant {
	for _, v := range s.Variants {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// DefaultOrdinal is the ordinal of the chosen default variant.
func (s *SumType) DefaultOrdinal() int {
	if s.Default == nil {
		return 0
	}
	if v := s.Variant(s.Default.Variant); v != nil {
		return v.Ordinal
	}
	return 0
}

func (s *SumType) String() string {
	return s.Name
}

// Variant is one alternative of a sum type.
type Variant struct {
	Name    string
	Ordinal int

	// Slots is empty for unit variants.
	Slots []*Slot

	// Policy overrides the type-level policy for this variant's slots.
	Policy Policy

	// Explicit holds one Go expression per slot, verbatim, when the variant
	// carries default(...). Explicit defaults win over any policy.
	Explicit []string

	Pos string
}

// IsUnit reports whether the variant carries no data.
func (v *Variant) IsUnit() bool {
	return len(v.Slots) == 0
}

// HasExplicit reports whether the variant carries default(...).
func (v *Variant) HasExplicit() bool {
	return v.Explicit != nil
}

// Single reports whether the variant is a single unnamed slot, i.e. a
// struct-form field whose type is not an anonymous struct.
func (v *Variant) Single() bool {
	return len(v.Slots) == 1 && v.Slots[0].Name == ""
}

// Slot is a typed data position inside a variant.
type Slot struct {
	// Name is the inner field name, empty for the single slot of a variant.
	Name string

	Type TypeRef

	Capability Capability
}

// TypeDefault is a type-level default(V) or default(V(args...)).
type TypeDefault struct {
	Variant string

	// Args are explicit slot expressions for the variant, nil if none were given.
	Args []string
}

// SlotPath names a slot for diagnostics: Type.Variant or Type.Variant.Field.
func SlotPath(s *SumType, v *Variant, slot *Slot) string {
	p := s.Name + "." + v.Name
	if slot != nil && slot.Name != "" {
		p += "." + slot.Name
	}
	return p
}
