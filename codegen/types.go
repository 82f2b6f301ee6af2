package codegen

import (
	"go/ast"

	"github.com/signadot/enumstate/schema"
	"go.uber.org/zap"
)

// TypeInfo holds a schema declaration as parsed from Go source
type TypeInfo struct {
	// Decl is the declaration handed to schema.Build
	Decl *schema.Decl

	// FilePath is the path to the source file declaring the type
	FilePath string

	// Fields holds the AST field of each struct form variant, by ordinal
	Fields []*ast.Field

	// Consts holds the constant name of each const form variant, by ordinal
	Consts []*ast.Ident

	// Imports maps package names to import paths for the declaring file
	Imports map[string]string

	// ASTNode is the type expression of the declaration
	ASTNode ast.Expr
}

// PackageInfo holds information about a Go package
type PackageInfo struct {
	// Path is the package import path (e.g., "github.com/user/project/ui")
	Path string

	// Dir is the directory containing the package
	Dir string

	// Name is the package name (e.g., "ui")
	Name string

	// Files contains paths to all .go files in the package
	Files []string
}

// Config holds configuration for generating one package
type Config struct {
	// OutputFile is the generated file (default: <package>_enumstate.go in the package directory)
	OutputFile string

	// Header replaces the generated file header when set
	Header string

	// TypeCheck loads the package with go/packages so imported types take
	// part in type checking and state-capable types of other packages are
	// recognized
	TypeCheck bool

	// Package is the package being generated
	Package *PackageInfo

	// Loader is shared between packages of one run; nil creates one
	Loader *PackageLoader

	// Logger receives progress and debug output; nil discards it
	Logger *zap.Logger
}

func (c *Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
