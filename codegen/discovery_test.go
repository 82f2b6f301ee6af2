package codegen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPackages(t *testing.T) {
	pkgs, err := DiscoverPackages("testdata", true)
	require.NoError(t, err)

	names := make(map[string]*PackageInfo)
	for _, pkg := range pkgs {
		names[pkg.Name] = pkg
	}
	for _, name := range []string{"focus", "missing", "cycle", "mismatch"} {
		pkg, ok := names[name]
		if !assert.True(t, ok, "package %s not found", name) {
			continue
		}
		assert.True(t, filepath.IsAbs(pkg.Dir))
		assert.Equal(t, []string{filepath.Join(pkg.Dir, name+".go")}, pkg.Files)
	}
}

func TestDiscoverPackagesNotRecursive(t *testing.T) {
	pkgs, err := DiscoverPackages("testdata", false)
	require.NoError(t, err)
	assert.Empty(t, pkgs)

	pkgs, err = DiscoverPackages(filepath.Join("testdata", "focus"), false)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "focus", pkgs[0].Name)
}
