// Package corpus owns the original buffer: every input file concatenated in
// load order, each followed by a SPECIAL_EOF sentinel, plus the per-file
// offset records needed to map an original-buffer position back to a
// (file, line) pair.
package corpus

import (
	"bytes"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/dupfind/internal/xerrors"
)

// SpecialEOF terminates each file's region in the original buffer and, later,
// each bookmark's suffix comparison in the processed buffer. It never occurs
// in valid source text.
const SpecialEOF byte = 0x07

// FileRecord marks where one file's region ends in the original buffer.
type FileRecord struct {
	Name      string
	EndOffset int
}

// Corpus is the original buffer plus its file records. Bytes are only ever
// appended; nothing is mutated once written.
type Corpus struct {
	original     []byte
	files        []FileRecord
	fingerprints map[string]uint64
}

// New returns an empty Corpus.
func New() *Corpus {
	return &Corpus{fingerprints: make(map[string]uint64)}
}

// AddFile reads path's bytes, appends them plus a SpecialEOF sentinel to the
// original buffer, and records the file's end offset. Directories and
// unreadable files are reported as IOErrors — the caller aborts.
func (c *Corpus) AddFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return xerrors.NewIOError("stat", path, err)
	}
	if info.IsDir() {
		return xerrors.NewIOError("read", path, os.ErrInvalid)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return xerrors.NewIOError("read", path, err)
	}

	c.fingerprints[path] = xxhash.Sum64(data)

	c.original = append(c.original, data...)
	c.original = append(c.original, SpecialEOF)
	c.files = append(c.files, FileRecord{Name: path, EndOffset: len(c.original)})
	return nil
}

// AddSentinelRecord appends a final bounds-stop record with an empty name, so
// FileNameOf/LineNumber never need a special case for "past the last file".
func (c *Corpus) AddSentinelRecord() {
	c.files = append(c.files, FileRecord{Name: "", EndOffset: len(c.original)})
}

// TotalLength is the length of the original buffer.
func (c *Corpus) TotalLength() int { return len(c.original) }

// ByteAt returns the original buffer byte at i.
func (c *Corpus) ByteAt(i int) byte { return c.original[i] }

// Original returns the full original buffer. Callers must not mutate it.
func (c *Corpus) Original() []byte { return c.original }

// Files returns the file records added so far, in load order.
func (c *Corpus) Files() []FileRecord { return c.files }

// Fingerprint returns the xxhash of path's raw bytes, if it was loaded
// through AddFile. It exists solely for the --fingerprint debug flag; the
// matching algorithm never consults it.
func (c *Corpus) Fingerprint(path string) (uint64, bool) {
	v, ok := c.fingerprints[path]
	return v, ok
}

// FileNameOf finds the file whose region contains original offset i: a
// linear scan for the smallest endOffset greater than i.
func (c *Corpus) FileNameOf(i int) string {
	for _, f := range c.files {
		if f.EndOffset > i {
			return f.Name
		}
	}
	return ""
}

// LineNumber converts an original-buffer offset into a 1-based line number
// within its file, by counting newlines from the start of that file's
// region up to (but not including) the query offset.
func (c *Corpus) LineNumber(offset int) int {
	start := 0
	for _, f := range c.files {
		if f.EndOffset > offset {
			region := c.original[start:offset]
			return bytes.Count(region, []byte{'\n'}) + 1
		}
		start = f.EndOffset
	}
	region := c.original[start:]
	return bytes.Count(region, []byte{'\n'}) + 1
}
