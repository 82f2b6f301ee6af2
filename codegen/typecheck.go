package codegen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"

	"github.com/signadot/enumstate/schema"
	"go.uber.org/zap"
)

// Checker holds the type checked files of one package and validates the
// schemas declared in them.
type Checker struct {
	fset   *token.FileSet
	pkg    *types.Package
	logger *zap.Logger
}

// NewChecker type checks files as the package at path. imp resolves the
// imports of the files; when nil, imported declarations stay untyped and
// checks involving them are skipped.
//
// Errors in the files themselves are logged and otherwise ignored, since
// generated methods may be missing or stale until the next run.
func NewChecker(fset *token.FileSet, path string, files []*ast.File, imp types.Importer, logger *zap.Logger) *Checker {
	if imp == nil {
		imp = noImports
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	conf := types.Config{
		Importer: imp,
		Error: func(err error) {
			logger.Debug("type error", zap.Error(err))
		},
	}
	pkg, _ := conf.Check(path, fset, files, nil)
	return &Checker{fset: fset, pkg: pkg, logger: logger}
}

// MarkCapable marks the slots of infos whose types are state capable.
// Slots already marked are left alone.
func (c *Checker) MarkCapable(infos []*TypeInfo) {
	for _, info := range infos {
		for _, vd := range info.Decl.Variants {
			for _, slot := range vd.Slots {
				if slot.Capability == schema.StateCapable || !slot.Type.Named() {
					continue
				}
				if named := c.lookupRef(slot.Type); named != nil && StateCapable(named) {
					c.logger.Debug("state capable slot",
						zap.String("type", info.Decl.Name),
						zap.String("variant", vd.Name),
						zap.String("slot", slot.Type.String()))
					slot.Capability = schema.StateCapable
				}
			}
		}
	}
}

// lookupRef resolves ref in the checked package, following its imports
// for qualified references.
func (c *Checker) lookupRef(ref schema.TypeRef) *types.Named {
	target := c.pkg
	if ref.PkgPath != c.pkg.Path() && ref.PkgPath != "" {
		target = nil
		for _, imp := range c.pkg.Imports() {
			if imp.Path() == ref.PkgPath {
				target = imp
				break
			}
		}
		if target == nil {
			return nil
		}
	}
	named, err := FindNamedType(target, ref.Name)
	if err != nil {
		return nil
	}
	return named
}

// Check validates st, built from info, against the checked package: the
// constants of a const form type must be distinct values of an integer
// type, and explicit default expressions must be assignable to their
// slots.
func (c *Checker) Check(info *TypeInfo, st *schema.SumType) error {
	named, err := FindNamedType(c.pkg, st.Name)
	if err != nil {
		return &schema.SchemaError{Schema: st.Name, Pos: st.Pos, Msg: err.Error()}
	}
	switch st.Form {
	case schema.ConstForm:
		return c.checkConsts(named, st)
	case schema.StructForm:
		return c.checkDefaults(info, st)
	}
	return nil
}

func (c *Checker) checkConsts(named *types.Named, st *schema.SumType) error {
	basic, ok := named.Underlying().(*types.Basic)
	if ok && basic.Kind() == types.Invalid {
		// declared with a type of an unresolved import
		return nil
	}
	if !ok || basic.Info()&types.IsInteger == 0 {
		return &schema.SchemaError{
			Schema: st.Name, Pos: st.Pos,
			Msg: fmt.Sprintf("const form types must have an integer underlying type, not %s", named.Underlying()),
		}
	}
	seen := make(map[string]string, len(st.Variants))
	for _, v := range st.Variants {
		cst, ok := c.pkg.Scope().Lookup(v.Name).(*types.Const)
		if !ok || !types.Identical(cst.Type(), named) {
			return &schema.SchemaError{Schema: st.Name, Variant: v.Name, Pos: v.Pos, Msg: "not a constant of the type"}
		}
		if cst.Val().Kind() == constant.Unknown {
			continue
		}
		key := cst.Val().ExactString()
		if other, dup := seen[key]; dup {
			return &schema.SchemaError{
				Schema: st.Name, Variant: v.Name, Pos: v.Pos,
				Msg: fmt.Sprintf("same value %s as %s", key, other),
			}
		}
		seen[key] = v.Name
	}
	return nil
}

func (c *Checker) checkDefaults(info *TypeInfo, st *schema.SumType) error {
	check := func(v *schema.Variant, exprs []string) error {
		if v.Ordinal >= len(info.Fields) {
			return nil
		}
		field := info.Fields[v.Ordinal]
		for i, src := range exprs {
			slot := v.Slots[i]
			typ := slotTypeExpr(field, slot)
			if typ == nil {
				return &schema.TypeMismatchError{Schema: st.Name, Variant: v.Name, Slot: slot.Name, Expr: src, Pos: v.Pos, Msg: "slot type not found"}
			}
			if err := c.checkAssign(field.Pos(), typ, src); err != nil {
				return &schema.TypeMismatchError{Schema: st.Name, Variant: v.Name, Slot: slot.Name, Expr: src, Pos: v.Pos, Msg: err.Error()}
			}
		}
		return nil
	}
	for _, v := range st.Variants {
		if err := check(v, v.Explicit); err != nil {
			return err
		}
	}
	if td := st.Default; td != nil && td.Args != nil {
		if v := st.Variant(td.Variant); v != nil {
			if err := check(v, td.Args); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkAssign checks that src can be assigned to a slot of type typ, both
// evaluated in the file scope at pos. The check is the composite literal
// []typ{(src)}, which applies assignability and constant representability.
func (c *Checker) checkAssign(pos token.Pos, typ ast.Expr, src string) error {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return err
	}
	lit := &ast.CompositeLit{
		Type: &ast.ArrayType{Elt: typ},
		Elts: []ast.Expr{&ast.ParenExpr{X: expr}},
	}
	info := &types.Info{Types: make(map[ast.Expr]types.TypeAndValue)}
	if err := types.CheckExpr(c.fset, c.pkg, pos, lit, info); err != nil {
		var terr types.Error
		if errors.As(err, &terr) {
			return errors.New(terr.Msg)
		}
		return err
	}
	return nil
}

// slotTypeExpr finds the declared type of slot in the variant field.
func slotTypeExpr(field *ast.Field, slot *schema.Slot) ast.Expr {
	if slot.Name == "" {
		return field.Type
	}
	inner, ok := field.Type.(*ast.StructType)
	if !ok {
		return nil
	}
	for _, f := range inner.Fields.List {
		for _, n := range f.Names {
			if n.Name == slot.Name {
				return f.Type
			}
		}
	}
	return nil
}
