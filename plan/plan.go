// Package plan computes the traversal plan of a sum type: the fixed
// ordinal to variant mapping and the wrap-around moves between ordinals.
package plan

import (
	"github.com/signadot/enumstate"
	"github.com/signadot/enumstate/schema"
)

// Plan is the traversal plan of one schema. It is shared by all values of
// the type and never changes once built.
type Plan struct {
	Schema *schema.SumType

	names   []string
	ordinal map[string]int
}

// New builds the plan of s.
func New(s *schema.SumType) (*Plan, error) {
	if len(s.Variants) == 0 {
		return nil, &schema.EmptySchemaError{Schema: s.Name, Pos: s.Pos}
	}
	p := &Plan{
		Schema:  s,
		names:   make([]string, len(s.Variants)),
		ordinal: make(map[string]int, len(s.Variants)),
	}
	for i, v := range s.Variants {
		p.names[i] = v.Name
		p.ordinal[v.Name] = i
	}
	return p, nil
}

// Size is the variant count N.
func (p *Plan) Size() int {
	return len(p.names)
}

// Names returns the variant names in ordinal order.
func (p *Plan) Names() []string {
	res := make([]string, len(p.names))
	copy(res, p.names)
	return res
}

// Name returns the name of ordinal i.
func (p *Plan) Name(i int) string {
	return enumstate.NameOf(p.Schema.Name, p.names, i)
}

// Variant returns the variant at ordinal i, or nil.
func (p *Plan) Variant(i int) *schema.Variant {
	if !p.Valid(i) {
		return nil
	}
	return p.Schema.Variants[i]
}

// Ordinal returns the ordinal of the variant called name.
func (p *Plan) Ordinal(name string) (int, bool) {
	i, ok := p.ordinal[name]
	return i, ok
}

// Valid reports whether i is an ordinal of the plan.
func (p *Plan) Valid(i int) bool {
	return i >= 0 && i < len(p.names)
}

func (p *Plan) First() int { return 0 }
func (p *Plan) Last() int  { return len(p.names) - 1 }

// Default is the ordinal of the chosen default variant.
func (p *Plan) Default() int {
	return p.Schema.DefaultOrdinal()
}

func (p *Plan) Successor(i int) int {
	return enumstate.Successor(i, len(p.names))
}

func (p *Plan) Predecessor(i int) int {
	return enumstate.Predecessor(i, len(p.names))
}

func (p *Plan) Skip(i, k int) int {
	return enumstate.Skip(i, k, len(p.names))
}

func (p *Plan) SkipBackward(i, k int) int {
	return enumstate.SkipBackward(i, k, len(p.names))
}
