package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace copies the named codegen test packages into a fresh module.
func workspace(t *testing.T, pkgs ...string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/m\n"), 0o644))
	for _, pkg := range pkgs {
		src, err := os.ReadFile(filepath.Join("..", "..", "codegen", "testdata", pkg, pkg+".go"))
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, pkg), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, pkg, pkg+".go"), src, 0o644))
	}
	return dir
}

func testMainConfig(dir string) *MainConfig {
	cfg := newMainConfig(context.Background())
	cfg.Dir = dir
	cfg.Recursive = true
	cfg.errOut = &bytes.Buffer{}
	return cfg
}

func TestGenAndCheck(t *testing.T) {
	dir := workspace(t, "focus")
	cfg := testMainConfig(dir)
	ctx := context.Background()
	generated := filepath.Join("focus", "focus_enumstate.go")

	var out bytes.Buffer
	err := runCheck(ctx, cfg, &out, false)
	assert.ErrorIs(t, err, errStale)
	assert.Contains(t, out.String(), "missing "+generated)

	out.Reset()
	require.NoError(t, runGen(ctx, cfg, &out))
	assert.Equal(t, "wrote "+generated+"\n", out.String())
	assert.FileExists(t, filepath.Join(dir, generated))

	out.Reset()
	require.NoError(t, runCheck(ctx, cfg, &out, false))
	assert.Empty(t, out.String())

	out.Reset()
	require.NoError(t, runGen(ctx, cfg, &out))
	assert.Empty(t, out.String())

	f, err := os.OpenFile(filepath.Join(dir, generated), os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteString("// edited\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out.Reset()
	err = runCheck(ctx, cfg, &out, true)
	assert.ErrorIs(t, err, errStale)
	assert.Contains(t, out.String(), "stale "+generated)
	assert.Contains(t, out.String(), "-// edited")
}

func TestGenConfigFile(t *testing.T) {
	dir := workspace(t, "focus")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".enumstate.yaml"), []byte("output: states_gen.go\nrecursive: true\njobs: 2\n"), 0o644))
	cfg := testMainConfig(dir)
	cfg.Recursive = false

	var out bytes.Buffer
	require.NoError(t, runGen(context.Background(), cfg, &out))
	assert.FileExists(t, filepath.Join(dir, "focus", "states_gen.go"))
	assert.NoFileExists(t, filepath.Join(dir, "focus", "focus_enumstate.go"))
}

func TestGenErrorHints(t *testing.T) {
	dir := workspace(t, "focus", "missing")
	cfg := testMainConfig(dir)

	var out bytes.Buffer
	err := runGen(context.Background(), cfg, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Limit.Capped")

	var hints bytes.Buffer
	printHints(&hints, err)
	assert.Contains(t, hints.String(), "hint: opaque slots need an explicit //enumstate:default(...) on the variant")
}

func TestGenWritesNothingForInvalidDeclarations(t *testing.T) {
	for _, pkg := range []string{"dup", "color", "mismatch"} {
		t.Run(pkg, func(t *testing.T) {
			dir := workspace(t, pkg)
			cfg := testMainConfig(dir)
			require.False(t, cfg.TypeCheck)

			var out bytes.Buffer
			require.Error(t, runGen(context.Background(), cfg, &out))
			assert.Empty(t, out.String())
			assert.NoFileExists(t, filepath.Join(dir, pkg, pkg+"_enumstate.go"))
		})
	}
}

func TestGenNoPackages(t *testing.T) {
	cfg := testMainConfig(workspace(t))
	err := runGen(context.Background(), cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Go packages found")
}

func TestExplain(t *testing.T) {
	dir := workspace(t, "focus")
	cfg := testMainConfig(dir)

	var out bytes.Buffer
	require.NoError(t, runExplain(context.Background(), cfg, &out, []string{"AppFocus"}, 3))
	text := out.String()
	assert.Contains(t, text, "AppFocus struct form, 3 variants, policy auto")
	assert.NotContains(t, text, "MainFocus const form")
	assert.Contains(t, text, "MainWindow(StatsTab)")
	assert.Contains(t, text, `Pair(3, "x")`)
	assert.Contains(t, text, "  default MainWindow(StatsTab)\n")
	assert.Contains(t, text, `  walk MainWindow(StatsTab) -> OtherWindow -> Pair(3, "x") -> MainWindow(StatsTab)`)

	out.Reset()
	require.NoError(t, runExplain(context.Background(), cfg, &out, nil, -1))
	assert.Contains(t, out.String(), "  walk StatsTab -> InfoTab\n")

	err := runExplain(context.Background(), cfg, &bytes.Buffer{}, []string{"AppFocus", "Nope"}, 0)
	require.Error(t, err)
	assert.Equal(t, "no enumeration named Nope", errors.UnwrapAll(err).Error())
}
