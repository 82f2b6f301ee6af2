package schema

import "strings"

// TypeRef names a Go type used by a slot.
type TypeRef struct {
	// PkgPath is the import path of the declaring package, empty for
	// builtin and unnamed types.
	PkgPath string

	// PkgName is the package name used to qualify Name.
	PkgName string

	// Name is the type name for named types.
	Name string

	// Expr is the type expression as written in the declaration.
	Expr string
}

// Named reports whether the reference is a plain or qualified named type.
func (r TypeRef) Named() bool {
	return r.Name != ""
}

// Key identifies the referenced type within a generation run.
func (r TypeRef) Key() string {
	if r.PkgPath == "" {
		return r.Name
	}
	return r.PkgPath + "." + r.Name
}

// Qualified returns the type as spelled from package fromPath.
func (r TypeRef) Qualified(fromPath string) string {
	if !r.Named() {
		return r.Expr
	}
	if r.PkgPath == "" || r.PkgPath == fromPath {
		return r.Name
	}
	return r.PkgName + "." + r.Name
}

func (r TypeRef) String() string {
	if r.Expr != "" {
		return r.Expr
	}
	if r.PkgName != "" {
		return r.PkgName + "." + r.Name
	}
	return r.Name
}

// IsEmptyStruct reports whether the expression is struct{}.
func (r TypeRef) IsEmptyStruct() bool {
	return strings.ReplaceAll(r.Expr, " ", "") == "struct{}"
}
