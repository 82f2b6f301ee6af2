package codegen

import (
	"fmt"
	"go/types"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// PackageLoader loads and caches type checked Go packages.
type PackageLoader struct {
	cache map[string]*packages.Package
	mu    sync.RWMutex

	logger *zap.Logger
}

// NewPackageLoader creates a new PackageLoader. A nil logger discards output.
func NewPackageLoader(logger *zap.Logger) *PackageLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageLoader{
		cache:  make(map[string]*packages.Package),
		logger: logger,
	}
}

// LoadDir loads the package in dir.
func (l *PackageLoader) LoadDir(dir string) (*packages.Package, error) {
	l.mu.RLock()
	if pkg, ok := l.cache[dir]; ok {
		l.mu.RUnlock()
		return pkg, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Check again in case it was loaded while we were waiting for the lock
	if pkg, ok := l.cache[dir]; ok {
		return pkg, nil
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %q: %w", dir, err)
	}
	if len(pkgs) == 0 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("no package found in %q", dir)
	}

	pkg := pkgs[0]
	// Methods generated by a previous run may be missing or stale, so
	// errors are expected and the partial type information is used.
	for _, e := range pkg.Errors {
		l.logger.Debug("package load error", zap.String("pkg", pkg.PkgPath), zap.String("error", e.Error()))
	}
	l.cache[dir] = pkg
	return pkg, nil
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) {
	return f(path)
}

// Importer resolves the imports of pkg to the packages go/packages loaded
// for it.
func Importer(pkg *packages.Package) types.Importer {
	byPath := make(map[string]*types.Package)
	for _, imp := range pkg.Types.Imports() {
		byPath[imp.Path()] = imp
	}
	return importerFunc(func(path string) (*types.Package, error) {
		if path == "unsafe" {
			return types.Unsafe, nil
		}
		if imp, ok := byPath[path]; ok {
			return imp, nil
		}
		return nil, fmt.Errorf("package %q is not imported by %s", path, pkg.PkgPath)
	})
}

// noImports leaves every import but unsafe unresolved.
var noImports = importerFunc(func(path string) (*types.Package, error) {
	if path == "unsafe" {
		return types.Unsafe, nil
	}
	return nil, fmt.Errorf("import %q not loaded", path)
})

// FindNamedType finds a named type definition in a type checked package.
func FindNamedType(pkg *types.Package, typeName string) (*types.Named, error) {
	obj := pkg.Scope().Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("type %q not found in package %q", typeName, pkg.Path())
	}
	typeNameObj, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%q is not a type name", typeName)
	}
	named, ok := typeNameObj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%q is not a named type", typeName)
	}
	return named, nil
}

// StateCapable reports whether t provides First, Last and Default methods
// returning t.
func StateCapable(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	ms := types.NewMethodSet(named)
	for _, name := range []string{"First", "Last", "Default"} {
		sel := ms.Lookup(named.Obj().Pkg(), name)
		if sel == nil {
			return false
		}
		sig, ok := sel.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			return false
		}
		if !types.Identical(sig.Results().At(0).Type(), named) {
			return false
		}
	}
	return true
}
