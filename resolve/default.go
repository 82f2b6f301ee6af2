package resolve

import (
	"strings"

	"github.com/signadot/enumstate/schema"
)

// Default is a resolved construction recipe: a chosen variant and, for each
// of its slots, where the slot value comes from. Defaults are built once
// and shared between every place that reaches them; they must not be
// modified.
type Default struct {
	Schema  *schema.SumType
	Variant *schema.Variant

	// Fields holds one entry per slot of Variant, in slot order.
	Fields []*Field
}

// Ordinal is the ordinal of the chosen variant.
func (d *Default) Ordinal() int {
	return d.Variant.Ordinal
}

// String renders the recipe, e.g. MainWindow(StatsTab) or Pair(3, "x").
func (d *Default) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *Default) write(b *strings.Builder) {
	b.WriteString(d.Variant.Name)
	if len(d.Fields) == 0 {
		return
	}
	b.WriteString("(")
	for i, f := range d.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		f.write(b)
	}
	b.WriteString(")")
}

// Field is the resolved value of one slot. Exactly one of Literal, Nested
// and External is set.
type Field struct {
	Slot *schema.Slot

	// Literal is an explicit default expression, used verbatim.
	Literal string

	// Nested is the recipe of a state-capable slot whose schema is part of
	// the resolved set.
	Nested *Default

	// External is a state-capable slot whose type lives outside the set.
	External *External

	// Policy is the policy that selected Nested or External.
	Policy schema.Policy
}

// Method is the generated method of the slot type that yields the same
// value as Nested or External.
func (f *Field) Method() string {
	return methodOf(f.Policy)
}

func (f *Field) String() string {
	var b strings.Builder
	f.write(&b)
	return b.String()
}

func (f *Field) write(b *strings.Builder) {
	switch {
	case f.Nested != nil:
		f.Nested.write(b)
	case f.External != nil:
		b.WriteString(f.External.String())
	default:
		b.WriteString(f.Literal)
	}
}

// External refers to the generated First, Last or Default method of a
// state-capable type outside the resolved set.
type External struct {
	Type   schema.TypeRef
	Policy schema.Policy
}

// Method is the generated method supplying the value.
func (e *External) Method() string {
	return methodOf(e.Policy)
}

func methodOf(p schema.Policy) string {
	switch p {
	case schema.First:
		return "First"
	case schema.Last:
		return "Last"
	default:
		return "Default"
	}
}

func (e *External) String() string {
	return e.Type.String() + "." + e.Method() + "()"
}

// Resolution holds every recipe of one schema.
type Resolution struct {
	Schema *schema.SumType

	// Variants holds the recipe of each variant, by ordinal. Moving to a
	// variant replaces the value with its recipe.
	Variants []*Default

	// Default is the recipe of the schema's default value.
	Default *Default
}

func (r *Resolution) First() *Default {
	return r.Variants[0]
}

func (r *Resolution) Last() *Default {
	return r.Variants[len(r.Variants)-1]
}
