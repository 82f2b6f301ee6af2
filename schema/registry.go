package schema

import "sort"

// Set holds the schemas of one generation run, keyed by type reference.
// Resolution only recurses into schemas of the set; state-capable types
// outside it are resolved through their generated methods.
type Set struct {
	byKey map[string]*SumType
	order []*SumType
}

// NewSet returns a set holding types, in order.
func NewSet(types ...*SumType) (*Set, error) {
	s := &Set{byKey: make(map[string]*SumType)}
	for _, t := range types {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers t.
func (s *Set) Add(t *SumType) error {
	if t == nil {
		return &SchemaError{Msg: "cannot register nil schema"}
	}
	key := t.Ref().Key()
	if _, exists := s.byKey[key]; exists {
		return &SchemaError{Schema: t.Name, Pos: t.Pos, Msg: "schema declared twice"}
	}
	s.byKey[key] = t
	s.order = append(s.order, t)
	return nil
}

// Lookup returns the schema ref names, or nil.
func (s *Set) Lookup(ref TypeRef) *SumType {
	if s == nil || !ref.Named() {
		return nil
	}
	return s.byKey[ref.Key()]
}

// All returns the schemas in registration order.
func (s *Set) All() []*SumType {
	res := make([]*SumType, len(s.order))
	copy(res, s.order)
	return res
}

// Names returns the sorted schema names.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, t := range s.order {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of schemas.
func (s *Set) Len() int {
	return len(s.order)
}
