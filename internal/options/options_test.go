package options

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	opts, err := Parse([]string{"a.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxReports, opts.MaxReports)
	assert.Equal(t, DefaultProximityFactor, opts.ProximityFactor)
	assert.Equal(t, []string{"a.c"}, opts.Files)
}

func TestBareNumberSetsMaxReports(t *testing.T) {
	opts, err := Parse([]string{"-10", "a.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, opts.MaxReports)
}

func TestMAttachedAndSeparate(t *testing.T) {
	opts, err := Parse([]string{"-m100", "a.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, opts.MinLength)
	assert.Equal(t, 0, opts.MaxReports)

	opts2, err := Parse([]string{"-m", "50", "a.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, opts2.MinLength)
}

func TestPAttachedAndSeparate(t *testing.T) {
	opts, err := Parse([]string{"-p90", "a.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 90, opts.ProximityFactor)
}

func TestInvalidProximityAborts(t *testing.T) {
	_, err := Parse([]string{"-p0", "file.c"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 1 and 100")
}

func TestTotalModeSetsFieldsAndExcludesTestPaths(t *testing.T) {
	var warnBuf bytes.Buffer
	opts, err := Parse([]string{"-t", "src/main.c", "src/main_test.c"}, &warnBuf)
	require.NoError(t, err)
	assert.True(t, opts.TotalMode)
	assert.Equal(t, TotalModeMinLength, opts.MinLength)
	assert.Equal(t, TotalModeProximity, opts.ProximityFactor)
	assert.Equal(t, 0, opts.MaxReports)
	assert.Equal(t, []string{"src/main.c"}, opts.Files)
	assert.Contains(t, warnBuf.String(), "main_test.c")
}

func TestCapitalTKeepsTestPaths(t *testing.T) {
	opts, err := Parse([]string{"-T", "src/main_test.c"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main_test.c"}, opts.Files)
}

func TestWordAndVerboseFlags(t *testing.T) {
	opts, err := Parse([]string{"-w", "-v", "a.txt"}, nil)
	require.NoError(t, err)
	assert.True(t, opts.WordMode)
	assert.True(t, opts.Verbose)
}

func TestHelpShortCircuits(t *testing.T) {
	opts, err := Parse([]string{"-h"}, nil)
	require.NoError(t, err)
	assert.True(t, opts.ShowUsage)
}

func TestVersionShortCircuits(t *testing.T) {
	opts, err := Parse([]string{"--version"}, nil)
	require.NoError(t, err)
	assert.True(t, opts.ShowVersion)
}

func TestMissingXArgumentErrors(t *testing.T) {
	_, err := Parse([]string{"-x"}, nil)
	require.Error(t, err)
}

func TestDiscoverFilesRespectsExcludeAndSort(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.c"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "vendor.c"), []byte("v"), 0o644))

	found, err := DiscoverFiles(dir, ".c", "vendor")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.True(t, found[0] < found[1])
}

func TestXScopedToNextEOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip_me.c"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.c"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip_me.go"), []byte("x"), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	opts, err := Parse([]string{"-x", "skip_me", "-e", ".c", "-e", ".go"}, nil)
	require.NoError(t, err)
	assert.Contains(t, opts.Files, "keep.c")
	assert.NotContains(t, opts.Files, "skip_me.c")
	assert.Contains(t, opts.Files, "other.go")
	assert.Contains(t, opts.Files, "skip_me.go")
}
