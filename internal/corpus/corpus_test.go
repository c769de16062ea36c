package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAddFileAppendsSentinel(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "abc")

	c := New()
	require.NoError(t, c.AddFile(path))

	assert.Equal(t, 4, c.TotalLength())
	assert.Equal(t, byte('a'), c.ByteAt(0))
	assert.Equal(t, SpecialEOF, c.ByteAt(3))
}

func TestAddFileDirectoryIsError(t *testing.T) {
	dir := t.TempDir()
	c := New()
	err := c.AddFile(dir)
	require.Error(t, err)
}

func TestAddFileMissingIsError(t *testing.T) {
	c := New()
	err := c.AddFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestFileNameOfAndLineNumber(t *testing.T) {
	dir := t.TempDir()
	p1 := writeTemp(t, dir, "one.txt", "a\nb\nc")
	p2 := writeTemp(t, dir, "two.txt", "x\ny")

	c := New()
	require.NoError(t, c.AddFile(p1))
	require.NoError(t, c.AddFile(p2))
	c.AddSentinelRecord()

	assert.Equal(t, p1, c.FileNameOf(0))
	assert.Equal(t, 1, c.LineNumber(0))
	assert.Equal(t, 2, c.LineNumber(2))
	assert.Equal(t, 3, c.LineNumber(4))

	p2Start := len("a\nb\nc") + 1
	assert.Equal(t, p2, c.FileNameOf(p2Start))
	assert.Equal(t, 1, c.LineNumber(p2Start))
}

func TestFingerprintRecorded(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "f.txt", "hello")
	c := New()
	require.NoError(t, c.AddFile(p))
	_, ok := c.Fingerprint(p)
	assert.True(t, ok)
}
