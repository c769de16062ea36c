// Package bookmark implements the dual-coordinate anchor abstraction and its
// owning container: a Bookmark pairs an original-buffer offset with a
// position in the Parser's processed buffer, and the container keeps them
// sorted by processed-suffix so the Finder can work adjacency pairs instead
// of an all-pairs scan.
package bookmark

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/dupfind/internal/corpus"
)

// cleared is the sentinel Processed value meaning "logically removed". We
// keep integer offsets into an owned buffer rather than raw pointers; -1
// plays the role of a null processed position.
const cleared = -1

// Bookmark anchors a candidate match start: OriginalIndex is its position in
// the Corpus's original buffer, Processed its position in the Parser's
// processed buffer.
type Bookmark struct {
	OriginalIndex int
	Processed     int
}

// New creates a live bookmark at the given coordinates.
func New(originalIndex, processed int) Bookmark {
	return Bookmark{OriginalIndex: originalIndex, Processed: processed}
}

// IsCleared reports whether this bookmark has been invalidated.
func (b Bookmark) IsCleared() bool { return b.Processed == cleared }

// Clear marks the bookmark as logically removed.
func (b *Bookmark) Clear() { b.Processed = cleared }

// String renders the bookmark as "file:line" using c to resolve coordinates.
func (b Bookmark) String(c *corpus.Corpus) string {
	return fmt.Sprintf("%s:%d", c.FileNameOf(b.OriginalIndex), c.LineNumber(b.OriginalIndex))
}

// Container owns an ordered sequence of Bookmarks plus a reference to the
// processed buffer they point into. It never owns the buffer itself — that
// stays with the Parser's result — only a read-only view of it.
type Container struct {
	processed []byte
	items     []Bookmark
}

// NewContainer wraps processed (the Parser's output buffer) and an initial
// set of bookmarks, in insertion order.
func NewContainer(processed []byte, items []Bookmark) *Container {
	return &Container{processed: processed, items: items}
}

// Add appends a bookmark, preserving insertion order (significant for the
// stable sort's tie-break).
func (c *Container) Add(b Bookmark) { c.items = append(c.items, b) }

// Size returns the number of bookmarks currently held, including any cleared
// in place by Clear and not yet compacted.
func (c *Container) Size() int { return len(c.items) }

// At returns the bookmark at index i in the container's current order.
func (c *Container) At(i int) Bookmark { return c.items[i] }

// IsCleared reports whether the bookmark at i has been cleared.
func (c *Container) IsCleared(i int) bool { return c.items[i].IsCleared() }

// Clear invalidates the bookmark at i in place (without compacting).
func (c *Container) Clear(i int) { c.items[i].Clear() }

// Sort stably orders the bookmarks by descending byte-lexicographic order of
// their processed-buffer suffix, comparison terminating at SPECIAL_EOF.
// Stability is required: ties must preserve insertion (source) order.
func (c *Container) Sort() {
	sort.SliceStable(c.items, func(i, j int) bool {
		return compareSuffix(c.processed, c.items[i].Processed, c.items[j].Processed) > 0
	})
}

// compareSuffix compares the processed-buffer suffixes starting at a and b,
// stopping at the first differing byte or at SPECIAL_EOF (inclusive).
// Positive means the suffix at a is byte-lexicographically greater than the
// suffix at b, so Sort places it first.
func compareSuffix(buf []byte, a, b int) int {
	for {
		ba, bb := buf[a], buf[b]
		if ba != bb {
			if ba < bb {
				return -1
			}
			return 1
		}
		if ba == corpus.SpecialEOF {
			return 0
		}
		a++
		b++
	}
}

// NrOfSame counts the length of the common byte prefix of the processed
// suffixes starting at bookmarks i and j, stopping at SPECIAL_EOF (the
// sentinel itself is not counted as a matched byte).
func (c *Container) NrOfSame(i, j int) int {
	a, b := c.items[i].Processed, c.items[j].Processed
	n := 0
	for {
		ba, bb := c.processed[a], c.processed[b]
		if ba != bb || ba == corpus.SpecialEOF {
			return n
		}
		n++
		a++
		b++
	}
}

// SameAs is the cheap pruning check: true only if both bookmarks have at
// least k+1 bytes of processed buffer ahead of them and the bytes at offsets
// k, k-1, ..., 0 are pairwise equal. Checking the far offset first lets the
// common case (the two suffixes diverge well before k) reject in O(1).
func (c *Container) SameAs(i, j, k, end int) bool {
	a, b := c.items[i].Processed, c.items[j].Processed
	if a+k >= end || b+k >= end {
		return false
	}
	for d := k; d >= 0; d-- {
		if c.processed[a+d] != c.processed[b+d] {
			return false
		}
	}
	return true
}

// ClearWithin invalidates every live bookmark whose Processed offset falls
// within [bm.Processed, bm.Processed+longestSame) for each of the `instances`
// bookmarks starting at startIndex, then compacts the container, preserving
// sort order among the survivors.
func (c *Container) ClearWithin(startIndex, instances, longestSame int) {
	type window struct{ lo, hi int }
	windows := make([]window, instances)
	for k := 0; k < instances; k++ {
		p := c.items[startIndex+k].Processed
		windows[k] = window{lo: p, hi: p + longestSame}
	}

	for i := range c.items {
		if c.items[i].IsCleared() {
			continue
		}
		p := c.items[i].Processed
		for _, w := range windows {
			if p >= w.lo && p < w.hi {
				c.items[i].Clear()
				break
			}
		}
	}
	c.compact()
}

// compact drops cleared entries, preserving the relative order of survivors.
func (c *Container) compact() {
	out := c.items[:0]
	for _, b := range c.items {
		if !b.IsCleared() {
			out = append(out, b)
		}
	}
	c.items = out
}
