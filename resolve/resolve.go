// Package resolve computes default construction recipes for the schemas of
// a generation run.
//
// Every variant of every schema gets a recipe: explicit default
// expressions are used verbatim, state-capable slots follow the variant's
// policy, or the type's when the variant declares none, and recurse into the
// nested schema. Recipes are memoized per schema and ordinal, so a schema
// reached along several paths is resolved once; a schema reached again while
// it is being resolved is a cycle.
package resolve

import (
	"strconv"

	"github.com/signadot/enumstate/schema"
)

// Resolver resolves schemas of one set. It is not safe for concurrent use.
type Resolver struct {
	set *schema.Set

	variants map[string]*Default
	defaults map[string]*Default

	active map[string]bool
	stack  []string
}

// New returns a resolver over set. Slots whose type is not in set are
// resolved as External references.
func New(set *schema.Set) *Resolver {
	return &Resolver{
		set:      set,
		variants: make(map[string]*Default),
		defaults: make(map[string]*Default),
		active:   make(map[string]bool),
	}
}

// Resolve returns the recipes of s.
func (r *Resolver) Resolve(s *schema.SumType) (*Resolution, error) {
	if len(s.Variants) == 0 {
		return nil, &schema.EmptySchemaError{Schema: s.Name, Pos: s.Pos}
	}
	res := &Resolution{
		Schema:   s,
		Variants: make([]*Default, len(s.Variants)),
	}
	for i := range s.Variants {
		d, err := r.variant(s, i)
		if err != nil {
			return nil, err
		}
		res.Variants[i] = d
	}
	d, err := r.typeDefault(s)
	if err != nil {
		return nil, err
	}
	res.Default = d
	return res, nil
}

// ResolveAll resolves every schema of the set, in set order. It fails on
// the first error and then returns no resolution at all.
func (r *Resolver) ResolveAll() ([]*Resolution, error) {
	all := r.set.All()
	res := make([]*Resolution, 0, len(all))
	for _, s := range all {
		one, err := r.Resolve(s)
		if err != nil {
			return nil, err
		}
		res = append(res, one)
	}
	return res, nil
}

func (r *Resolver) variant(s *schema.SumType, ord int) (*Default, error) {
	key := s.Ref().Key() + "#" + strconv.Itoa(ord)
	if d, ok := r.variants[key]; ok {
		return d, nil
	}
	if len(s.Variants) == 0 {
		return nil, &schema.EmptySchemaError{Schema: s.Name, Pos: s.Pos}
	}
	if err := r.enter(s); err != nil {
		return nil, err
	}
	defer r.leave(s)

	v := s.Variants[ord]
	d := &Default{Schema: s, Variant: v, Fields: make([]*Field, len(v.Slots))}
	for i, slot := range v.Slots {
		var f *Field
		var err error
		if v.HasExplicit() {
			f = &Field{Slot: slot, Literal: v.Explicit[i]}
		} else {
			f, err = r.slot(s, v, slot)
		}
		if err != nil {
			return nil, err
		}
		d.Fields[i] = f
	}
	r.variants[key] = d
	return d, nil
}

// typeDefault is the default value of s: the type-level default variant,
// applied to its explicit arguments when given, else ordinal 0.
func (r *Resolver) typeDefault(s *schema.SumType) (*Default, error) {
	key := s.Ref().Key()
	if d, ok := r.defaults[key]; ok {
		return d, nil
	}
	var d *Default
	if td := s.Default; td != nil && td.Args != nil {
		v := s.Variant(td.Variant)
		if v == nil {
			return nil, &schema.SchemaError{Schema: s.Name, Pos: s.Pos, Msg: "default names unknown variant " + strconv.Quote(td.Variant)}
		}
		if len(td.Args) != len(v.Slots) {
			return nil, &schema.TypeMismatchError{Schema: s.Name, Variant: v.Name, Pos: s.Pos, Msg: "type-level default arity"}
		}
		d = &Default{Schema: s, Variant: v, Fields: make([]*Field, len(v.Slots))}
		for i, slot := range v.Slots {
			d.Fields[i] = &Field{Slot: slot, Literal: td.Args[i]}
		}
	} else {
		var err error
		d, err = r.variant(s, s.DefaultOrdinal())
		if err != nil {
			return nil, err
		}
	}
	r.defaults[key] = d
	return d, nil
}

func (r *Resolver) slot(s *schema.SumType, v *schema.Variant, slot *schema.Slot) (*Field, error) {
	policy := v.Policy
	if policy == schema.NoPolicy {
		policy = s.Policy
	}
	if slot.Capability != schema.StateCapable || policy == schema.NoPolicy {
		return nil, &schema.MissingDefaultError{
			Schema:  s.Name,
			Variant: v.Name,
			Slot:    slot.Name,
			Pos:     v.Pos,
			Policy:  policy,
		}
	}
	nested := r.set.Lookup(slot.Type)
	if nested == nil {
		return &Field{Slot: slot, External: &External{Type: slot.Type, Policy: policy}, Policy: policy}, nil
	}
	var d *Default
	var err error
	switch policy {
	case schema.First:
		d, err = r.variant(nested, 0)
	case schema.Last:
		d, err = r.variant(nested, len(nested.Variants)-1)
	default:
		d, err = r.typeDefault(nested)
	}
	if err != nil {
		return nil, err
	}
	return &Field{Slot: slot, Nested: d, Policy: policy}, nil
}

func (r *Resolver) enter(s *schema.SumType) error {
	key := s.Ref().Key()
	if r.active[key] {
		var path []string
		for i, name := range r.stack {
			if name == s.Name {
				path = append(path, r.stack[i:]...)
				break
			}
		}
		path = append(path, s.Name)
		return &schema.CyclicDefaultError{Path: path}
	}
	r.active[key] = true
	r.stack = append(r.stack, s.Name)
	return nil
}

func (r *Resolver) leave(s *schema.SumType) {
	delete(r.active, s.Ref().Key())
	r.stack = r.stack[:len(r.stack)-1]
}
