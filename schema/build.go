package schema

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// Attribute names recognized at type and variant level.
const (
	AttrDefault = "default"
	AttrFirst   = "first"
	AttrLast    = "last"
	AttrAuto    = "auto"
)

// Attr is one attribute token, e.g. default(StatsTab) or auto.
type Attr struct {
	Name string

	// Args are the comma-separated arguments inside the parentheses.
	Args []string

	Pos string
}

func (a Attr) String() string {
	if a.Args == nil {
		return a.Name
	}
	s := a.Name + "("
	for i, arg := range a.Args {
		if i > 0 {
			s += ", "
		}
		s += arg
	}
	return s + ")"
}

// Decl is a declaration as read from source, before attribute rules apply.
type Decl struct {
	Name    string
	PkgName string
	PkgPath string
	Form    Form
	Attrs   []Attr
	Pos     string

	Variants []*VariantDecl
}

// VariantDecl is one variant as read from source.
type VariantDecl struct {
	Name  string
	Slots []*Slot
	Attrs []Attr
	Pos   string
}

// Build applies attribute placement rules to d and validates the result.
func Build(d *Decl) (*SumType, error) {
	st := &SumType{
		Name:    d.Name,
		PkgName: d.PkgName,
		PkgPath: d.PkgPath,
		Form:    d.Form,
		Pos:     d.Pos,
	}
	for _, a := range d.Attrs {
		switch a.Name {
		case AttrDefault:
			if st.Default != nil {
				return nil, &SchemaError{Schema: st.Name, Pos: a.Pos, Msg: "more than one type-level default"}
			}
			if len(a.Args) != 1 {
				return nil, &SchemaError{Schema: st.Name, Pos: a.Pos, Msg: "type-level default takes exactly one variant"}
			}
			td, err := ParseTypeDefault(a.Args[0])
			if err != nil {
				return nil, &SchemaError{Schema: st.Name, Pos: a.Pos, Msg: err.Error()}
			}
			st.Default = td
		case AttrFirst, AttrLast, AttrAuto:
			p, err := mergePolicy(st.Policy, a)
			if err != nil {
				return nil, &SchemaError{Schema: st.Name, Pos: a.Pos, Msg: err.Error()}
			}
			st.Policy = p
		default:
			return nil, &SchemaError{Schema: st.Name, Pos: a.Pos, Msg: fmt.Sprintf("unknown attribute %q", a.Name)}
		}
	}
	for i, vd := range d.Variants {
		v := &Variant{
			Name:    vd.Name,
			Ordinal: i,
			Slots:   vd.Slots,
			Pos:     vd.Pos,
		}
		for _, a := range vd.Attrs {
			switch a.Name {
			case AttrDefault:
				if v.Explicit != nil {
					return nil, &SchemaError{Schema: st.Name, Variant: v.Name, Pos: a.Pos, Msg: "more than one default"}
				}
				if len(a.Args) == 0 {
					return nil, &SchemaError{Schema: st.Name, Variant: v.Name, Pos: a.Pos, Msg: "default requires an expression"}
				}
				if v.IsUnit() {
					return nil, &SchemaError{Schema: st.Name, Variant: v.Name, Pos: a.Pos, Msg: "default(...) on a unit variant"}
				}
				v.Explicit = a.Args
			case AttrFirst, AttrLast, AttrAuto:
				p, err := mergePolicy(v.Policy, a)
				if err != nil {
					return nil, &SchemaError{Schema: st.Name, Variant: v.Name, Pos: a.Pos, Msg: err.Error()}
				}
				v.Policy = p
			default:
				return nil, &SchemaError{Schema: st.Name, Variant: v.Name, Pos: a.Pos, Msg: fmt.Sprintf("unknown attribute %q", a.Name)}
			}
		}
		st.Variants = append(st.Variants, v)
	}
	if err := Validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

func mergePolicy(cur Policy, a Attr) (Policy, error) {
	if len(a.Args) != 0 {
		return cur, fmt.Errorf("%s takes no arguments", a.Name)
	}
	var p Policy
	switch a.Name {
	case AttrFirst:
		p = First
	case AttrLast:
		p = Last
	case AttrAuto:
		p = Auto
	}
	if cur != NoPolicy {
		return cur, fmt.Errorf("conflicting policies %s and %s", cur, p)
	}
	return p, nil
}

// reserved are the names struct form variants cannot take: the embedded
// tag and the generated methods.
var reserved = map[string]bool{
	"Tag": true, "Index": true, "Name": true, "Default": true,
	"First": true, "Last": true, "Size": true, "Names": true,
	"FromIndex": true, "AllStates": true, "Next": true, "Previous": true,
	"Skip": true, "SkipBackward": true,
}

// Validate checks the structural invariants of s.
func Validate(s *SumType) error {
	if len(s.Variants) == 0 {
		return &EmptySchemaError{Schema: s.Name, Pos: s.Pos}
	}
	seen := make(map[string]bool, len(s.Variants))
	for i, v := range s.Variants {
		if v.Name == "" {
			return &SchemaError{Schema: s.Name, Pos: v.Pos, Msg: fmt.Sprintf("variant %d has no name", i)}
		}
		if v.Ordinal != i {
			return &SchemaError{Schema: s.Name, Variant: v.Name, Pos: v.Pos, Msg: fmt.Sprintf("ordinal %d, want %d", v.Ordinal, i)}
		}
		if seen[v.Name] {
			return &SchemaError{Schema: s.Name, Variant: v.Name, Pos: v.Pos, Msg: "duplicate variant"}
		}
		seen[v.Name] = true
		if s.Form == StructForm && reserved[v.Name] {
			return &SchemaError{Schema: s.Name, Variant: v.Name, Pos: v.Pos, Msg: fmt.Sprintf("variant name %s is reserved", v.Name)}
		}
		if s.Form == ConstForm && !v.IsUnit() {
			return &SchemaError{Schema: s.Name, Variant: v.Name, Pos: v.Pos, Msg: "constant variants cannot carry fields"}
		}
		if v.HasExplicit() && len(v.Explicit) != len(v.Slots) {
			return &TypeMismatchError{
				Schema: s.Name, Variant: v.Name, Pos: v.Pos,
				Msg: fmt.Sprintf("%d expressions for %d slots", len(v.Explicit), len(v.Slots)),
			}
		}
	}
	if s.Default != nil {
		v := s.Variant(s.Default.Variant)
		if v == nil {
			return &SchemaError{Schema: s.Name, Pos: s.Pos, Msg: fmt.Sprintf("default names unknown variant %q", s.Default.Variant)}
		}
		if s.Default.Args != nil && len(s.Default.Args) != len(v.Slots) {
			return &TypeMismatchError{
				Schema: s.Name, Variant: v.Name, Pos: s.Pos,
				Msg: fmt.Sprintf("type-level default gives %d expressions for %d slots", len(s.Default.Args), len(v.Slots)),
			}
		}
	}
	return nil
}

// ParseTypeDefault parses the argument of a type-level default: a variant
// name, optionally applied to slot expressions as in MainWindow(GraphsTab).
func ParseTypeDefault(src string) (*TypeDefault, error) {
	fset := token.NewFileSet()
	expr, err := parser.ParseExprFrom(fset, "", src, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid default %q: %w", src, err)
	}
	switch x := expr.(type) {
	case *ast.Ident:
		return &TypeDefault{Variant: x.Name}, nil
	case *ast.CallExpr:
		fun, ok := x.Fun.(*ast.Ident)
		if !ok || x.Ellipsis.IsValid() {
			return nil, fmt.Errorf("invalid default %q: want Variant or Variant(args...)", src)
		}
		args := make([]string, 0, len(x.Args))
		for _, arg := range x.Args {
			args = append(args, exprSource(fset, src, arg))
		}
		return &TypeDefault{Variant: fun.Name, Args: args}, nil
	default:
		return nil, fmt.Errorf("invalid default %q: want Variant or Variant(args...)", src)
	}
}

func exprSource(fset *token.FileSet, src string, e ast.Expr) string {
	f := fset.File(e.Pos())
	return src[f.Offset(e.Pos()):f.Offset(e.End())]
}
