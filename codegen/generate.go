package codegen

import (
	"bytes"
	"context"
	"go/token"
	"go/types"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/signadot/enumstate/emit"
	"github.com/signadot/enumstate/resolve"
	"github.com/signadot/enumstate/schema"
	"go.uber.org/zap"
)

// Result is the outcome of generating one package.
type Result struct {
	Package *PackageInfo

	// OutputFile is where the source belongs
	OutputFile string

	// Schemas in emission order
	Schemas []*schema.SumType

	// Source is the generated file, nil when the package declares no schema
	Source []byte
}

// OutputPath returns the generated file path for cfg.
func OutputPath(cfg *Config) string {
	name := cfg.OutputFile
	if name == "" {
		name = cfg.Package.Name + "_enumstate.go"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Package.Dir, name)
}

// LoadSchemas parses, builds and type checks the schemas of cfg.Package.
// It returns no schema and no error when the package declares none.
//
// Type checking always covers the package's own declarations. With
// cfg.TypeCheck the package is also loaded with go/packages, so imported
// types take part in the checks and state capable types of other packages
// are recognized.
func LoadSchemas(ctx context.Context, cfg *Config) ([]*schema.SumType, error) {
	pkg := cfg.Package
	log := cfg.logger().With(zap.String("pkg", pkg.Dir))

	var imp types.Importer
	pkgPath := pkg.Path
	if cfg.TypeCheck {
		loader := cfg.Loader
		if loader == nil {
			loader = NewPackageLoader(cfg.Logger)
		}
		loaded, err := loader.LoadDir(pkg.Dir)
		if err != nil {
			return nil, errors.Wrapf(err, "package %s", pkg.Dir)
		}
		pkgPath = loaded.PkgPath
		imp = Importer(loaded)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	files, err := ParseFiles(fset, pkg)
	if err != nil {
		return nil, explain(err, pkg)
	}
	infos, err := ExtractTypes(fset, files, pkgPath)
	if err != nil {
		return nil, explain(err, pkg)
	}
	if len(infos) == 0 {
		log.Debug("no state enumerations")
		return nil, nil
	}
	checker := NewChecker(fset, pkgPath, files, imp, log)
	checker.MarkCapable(infos)

	sts := make([]*schema.SumType, 0, len(infos))
	for _, info := range infos {
		st, err := schema.Build(info.Decl)
		if err != nil {
			return nil, explain(err, pkg)
		}
		if err := checker.Check(info, st); err != nil {
			return nil, explain(err, pkg)
		}
		log.Debug("schema",
			zap.String("type", st.Name),
			zap.Stringer("form", st.Form),
			zap.Int("variants", st.Size()),
			zap.Stringer("policy", st.Policy))
		sts = append(sts, st)
	}
	return sts, ctx.Err()
}

// Generate runs the generation pipeline for cfg.Package and returns the
// generated source. Nothing is written.
func Generate(ctx context.Context, cfg *Config) (*Result, error) {
	pkg := cfg.Package
	log := cfg.logger().With(zap.String("pkg", pkg.Dir))
	res := &Result{Package: pkg, OutputFile: OutputPath(cfg)}

	sts, err := LoadSchemas(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(sts) == 0 {
		return res, nil
	}

	set, err := schema.NewSet(sts...)
	if err != nil {
		return nil, explain(err, pkg)
	}
	all, err := resolve.New(set).ResolveAll()
	if err != nil {
		return nil, explain(err, pkg)
	}
	for _, r := range all {
		log.Debug("resolved", zap.String("type", r.Schema.Name), zap.Stringer("default", r.Default))
	}
	ordered, err := TopologicalSort(BuildDependencyGraph(all))
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", pkg.Dir)
	}

	src, err := emit.Source(&emit.File{
		Name:        filepath.Base(res.OutputFile),
		PkgName:     pkg.Name,
		Header:      cfg.Header,
		Resolutions: ordered,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", pkg.Dir)
	}
	for _, r := range ordered {
		res.Schemas = append(res.Schemas, r.Schema)
	}
	res.Source = src
	return res, nil
}

// explain wraps a pipeline error with its package and a remedy hint.
func explain(err error, pkg *PackageInfo) error {
	var (
		missing  *schema.MissingDefaultError
		cyclic   *schema.CyclicDefaultError
		mismatch *schema.TypeMismatchError
		empty    *schema.EmptySchemaError
	)
	switch {
	case errors.As(err, &missing) && missing.Policy != schema.NoPolicy:
		err = errors.WithHint(err, "opaque slots need an explicit //enumstate:default(...) on the variant")
	case errors.As(err, &missing):
		err = errors.WithHint(err, "add //enumstate:default(...) to the variant, or a first, last or auto policy for state-capable slots")
	case errors.As(err, &cyclic):
		err = errors.WithHint(err, "give a variant on the cycle an explicit //enumstate:default(...)")
	case errors.As(err, &mismatch):
		err = errors.WithHint(err, "default expressions must be assignable to their slot types")
	case errors.As(err, &empty):
		err = errors.WithHint(err, "declare at least one constant or variant field")
	}
	return errors.Wrapf(err, "package %s", pkg.Dir)
}

// WriteResult writes the source of res to its output file, replacing it
// atomically. It reports whether the file changed.
func WriteResult(res *Result) (bool, error) {
	if res.Source == nil {
		return false, nil
	}
	if existing, err := os.ReadFile(res.OutputFile); err == nil && bytes.Equal(existing, res.Source) {
		return false, nil
	}
	dir, base := filepath.Split(res.OutputFile)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return false, errors.Wrapf(err, "failed to create temporary file for %q", res.OutputFile)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(res.Source); err != nil {
		tmp.Close()
		return false, errors.Wrapf(err, "failed to write %q", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return false, errors.Wrapf(err, "failed to write %q", tmp.Name())
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to set mode of %q", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), res.OutputFile); err != nil {
		return false, errors.Wrapf(err, "failed to write output file %q", res.OutputFile)
	}
	return true, nil
}
