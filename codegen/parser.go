package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"github.com/signadot/enumstate/schema"
)

// RuntimePath is the import path of the run-time package declaring Tag.
const RuntimePath = "github.com/signadot/enumstate"

// ParseFile parses a Go source file and returns its AST. src may be nil, in
// which case the file is read from disk.
func ParseFile(fset *token.FileSet, filename string, src any) (*ast.File, error) {
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %q: %w", filename, err)
	}
	return file, nil
}

// ParseFiles parses every file of pkg.
func ParseFiles(fset *token.FileSet, pkg *PackageInfo) ([]*ast.File, error) {
	files := make([]*ast.File, 0, len(pkg.Files))
	for _, path := range pkg.Files {
		file, err := ParseFile(fset, path, nil)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// ExtractTypes extracts the schema declarations of files, which must
// belong to one package. Types are returned in declaration order; the
// variants of a const form type are its constants in declaration order
// across files.
func ExtractTypes(fset *token.FileSet, files []*ast.File, pkgPath string) ([]*TypeInfo, error) {
	x := &extractor{
		fset:    fset,
		pkgPath: pkgPath,
		byName:  make(map[string]*TypeInfo),
	}
	for _, file := range files {
		if err := x.types(file); err != nil {
			return nil, err
		}
	}
	for _, file := range files {
		if err := x.consts(file); err != nil {
			return nil, err
		}
	}
	x.markCapable()
	return x.infos, nil
}

type extractor struct {
	fset    *token.FileSet
	pkgPath string
	infos   []*TypeInfo
	byName  map[string]*TypeInfo
}

func (x *extractor) pos(p token.Pos) string {
	return x.fset.Position(p).String()
}

func (x *extractor) types(file *ast.File) error {
	imports := ExtractImports(file)
	filePath := x.fset.Position(file.Package).Filename
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)
			doc := typeSpec.Doc
			if doc == nil && !genDecl.Lparen.IsValid() {
				doc = genDecl.Doc
			}
			attrs, marked, err := x.directives(doc)
			if err != nil {
				return &schema.SchemaError{Schema: typeSpec.Name.Name, Pos: x.pos(typeSpec.Pos()), Msg: err.Error()}
			}
			structType, isStruct := typeSpec.Type.(*ast.StructType)
			tagged := isStruct && embedsTag(structType, imports)
			if !marked && !tagged {
				continue
			}
			info, err := x.typeInfo(file, typeSpec, attrs, imports)
			if err != nil {
				return err
			}
			info.FilePath = filePath
			if _, dup := x.byName[info.Decl.Name]; dup {
				return &schema.SchemaError{Schema: info.Decl.Name, Pos: info.Decl.Pos, Msg: "schema declared twice"}
			}
			x.byName[info.Decl.Name] = info
			x.infos = append(x.infos, info)
		}
	}
	return nil
}

func (x *extractor) typeInfo(file *ast.File, typeSpec *ast.TypeSpec, attrs []schema.Attr, imports map[string]string) (*TypeInfo, error) {
	name := typeSpec.Name.Name
	pos := x.pos(typeSpec.Pos())
	fail := func(msg string) error {
		return &schema.SchemaError{Schema: name, Pos: pos, Msg: msg}
	}
	if typeSpec.TypeParams != nil {
		return nil, fail("generic types cannot be state enumerations")
	}
	if typeSpec.Assign.IsValid() {
		return nil, fail("type aliases cannot be state enumerations")
	}
	info := &TypeInfo{
		Decl: &schema.Decl{
			Name:    name,
			PkgName: file.Name.Name,
			PkgPath: x.pkgPath,
			Attrs:   attrs,
			Pos:     pos,
		},
		Imports: imports,
		ASTNode: typeSpec.Type,
	}
	switch t := typeSpec.Type.(type) {
	case *ast.StructType:
		if !embedsTag(t, imports) {
			return nil, fail("struct form must embed enumstate.Tag")
		}
		info.Decl.Form = schema.StructForm
		if err := x.variants(info, t); err != nil {
			return nil, err
		}
	case *ast.Ident:
		info.Decl.Form = schema.ConstForm
	default:
		return nil, fail(fmt.Sprintf("unsupported declaration %s; use an integer type or a struct embedding enumstate.Tag", types.ExprString(t)))
	}
	return info, nil
}

func (x *extractor) variants(info *TypeInfo, structType *ast.StructType) error {
	d := info.Decl
	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			if isTagExpr(field.Type, info.Imports) {
				continue
			}
			return &schema.SchemaError{Schema: d.Name, Pos: x.pos(field.Pos()), Msg: fmt.Sprintf("embedded field %s cannot be a variant", types.ExprString(field.Type))}
		}
		attrs, _, err := x.directives(field.Doc)
		if err != nil {
			return &schema.SchemaError{Schema: d.Name, Pos: x.pos(field.Pos()), Msg: err.Error()}
		}
		if field.Tag != nil {
			if content, ok := tagAttrs(field.Tag.Value); ok {
				tagged, err := ParseAttrs(content, x.pos(field.Tag.Pos()))
				if err != nil {
					return &schema.SchemaError{Schema: d.Name, Pos: x.pos(field.Tag.Pos()), Msg: err.Error()}
				}
				attrs = append(attrs, tagged...)
			}
		}
		for _, name := range field.Names {
			if name.Name == "_" {
				continue
			}
			slots, err := x.slots(field.Type, info)
			if err != nil {
				return &schema.SchemaError{Schema: d.Name, Variant: name.Name, Pos: x.pos(name.Pos()), Msg: err.Error()}
			}
			d.Variants = append(d.Variants, &schema.VariantDecl{
				Name:  name.Name,
				Slots: slots,
				Attrs: attrs,
				Pos:   x.pos(name.Pos()),
			})
			info.Fields = append(info.Fields, field)
		}
	}
	return nil
}

// slots derives the slots of a variant from its field type: none for
// struct{}, one per inner field for other anonymous structs, else one.
func (x *extractor) slots(expr ast.Expr, info *TypeInfo) ([]*schema.Slot, error) {
	st, ok := expr.(*ast.StructType)
	if !ok {
		return []*schema.Slot{{Type: x.typeRef(expr, info)}}, nil
	}
	var res []*schema.Slot
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			return nil, fmt.Errorf("embedded field %s in variant", types.ExprString(f.Type))
		}
		for _, n := range f.Names {
			res = append(res, &schema.Slot{Name: n.Name, Type: x.typeRef(f.Type, info)})
		}
	}
	return res, nil
}

func (x *extractor) typeRef(expr ast.Expr, info *TypeInfo) schema.TypeRef {
	ref := schema.TypeRef{Expr: types.ExprString(expr)}
	switch t := expr.(type) {
	case *ast.Ident:
		if obj := types.Universe.Lookup(t.Name); obj != nil {
			return ref
		}
		ref.PkgPath = x.pkgPath
		ref.PkgName = info.Decl.PkgName
		ref.Name = t.Name
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		if !ok {
			return ref
		}
		path, ok := info.Imports[pkg.Name]
		if !ok {
			return ref
		}
		ref.PkgPath = path
		ref.PkgName = pkg.Name
		ref.Name = t.Sel.Name
	}
	return ref
}

func (x *extractor) consts(file *ast.File) error {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		var cur string
		for _, spec := range genDecl.Specs {
			valueSpec := spec.(*ast.ValueSpec)
			switch {
			case valueSpec.Type != nil:
				cur = ""
				if id, ok := valueSpec.Type.(*ast.Ident); ok {
					cur = id.Name
				}
			case len(valueSpec.Values) > 0:
				cur = ""
			}
			info, ok := x.byName[cur]
			if !ok || info.Decl.Form != schema.ConstForm {
				continue
			}
			doc := valueSpec.Doc
			if doc == nil && !genDecl.Lparen.IsValid() {
				doc = genDecl.Doc
			}
			attrs, _, err := x.directives(doc)
			if err != nil {
				return &schema.SchemaError{Schema: cur, Pos: x.pos(valueSpec.Pos()), Msg: err.Error()}
			}
			for _, name := range valueSpec.Names {
				if name.Name == "_" {
					continue
				}
				info.Decl.Variants = append(info.Decl.Variants, &schema.VariantDecl{
					Name:  name.Name,
					Attrs: attrs,
					Pos:   x.pos(name.Pos()),
				})
				info.Consts = append(info.Consts, name)
			}
		}
	}
	return nil
}

// markCapable marks slots typed with a schema of the package as state
// capable. Types of other packages need the loader.
func (x *extractor) markCapable() {
	for _, info := range x.infos {
		for _, vd := range info.Decl.Variants {
			for _, slot := range vd.Slots {
				if slot.Type.PkgPath != x.pkgPath || slot.Type.Expr != slot.Type.Name {
					continue
				}
				if _, ok := x.byName[slot.Type.Name]; ok {
					slot.Capability = schema.StateCapable
				}
			}
		}
	}
}

// directives collects the attributes of the //enumstate: lines of doc.
// marked reports whether any such line was present, even an empty one.
func (x *extractor) directives(doc *ast.CommentGroup) (attrs []schema.Attr, marked bool, err error) {
	if doc == nil {
		return nil, false, nil
	}
	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, DirectivePrefix) {
			continue
		}
		marked = true
		line, err := ParseAttrs(strings.TrimPrefix(c.Text, DirectivePrefix), x.pos(c.Pos()))
		if err != nil {
			return nil, true, err
		}
		attrs = append(attrs, line...)
	}
	return attrs, marked, nil
}

// ExtractImports extracts imports from an AST file.
// Returns a map of package name -> import path.
func ExtractImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			// Default to the last component of the path
			parts := strings.Split(path, "/")
			name = parts[len(parts)-1]
		}
		imports[name] = path
	}
	return imports
}

func embedsTag(st *ast.StructType, imports map[string]string) bool {
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 && isTagExpr(f.Type, imports) {
			return true
		}
	}
	return false
}

// isTagExpr reports whether expr names enumstate.Tag, under whatever name
// the runtime package is imported.
func isTagExpr(expr ast.Expr, imports map[string]string) bool {
	switch t := expr.(type) {
	case *ast.SelectorExpr:
		pkg, ok := t.X.(*ast.Ident)
		return ok && t.Sel.Name == "Tag" && imports[pkg.Name] == RuntimePath
	case *ast.Ident:
		return t.Name == "Tag" && imports["."] == RuntimePath
	}
	return false
}
