// Package finder implements the iterative longest-duplication search: given
// a sorted BookmarkContainer, it repeatedly locates the best remaining
// Duplication, hands it to the caller for reporting, and invalidates the
// bookmarks it covers so the next iteration sees a clean container.
package finder

import "github.com/standardbeagle/dupfind/internal/bookmark"

// Duplication is one reported group of near-identical regions: `instances`
// consecutive bookmarks in the sorted container starting at
// IndexOf1stInstance share a processed prefix of at least LongestSame bytes.
type Duplication struct {
	Instances          int
	LongestSame        int
	IndexOf1stInstance int
}

// Finder walks a sorted bookmark.Container to find and invalidate
// duplications, longest first.
type Finder struct {
	container       *bookmark.Container
	processedLen    int
	minLength       int
	proximityFactor int
}

// New builds a Finder over container (already sorted) and its processed
// buffer's length. minLength is the inclusive minimum duplication length in
// characters; proximityFactor (1..100) controls near-duplicate expansion.
func New(container *bookmark.Container, processedLen, minLength, proximityFactor int) *Finder {
	return &Finder{
		container:       container,
		processedLen:    processedLen,
		minLength:       minLength,
		proximityFactor: proximityFactor,
	}
}

// FindWorst runs one search for the current longest remaining duplication.
// Instances == 0 means nothing left meets minLength (or fewer than two
// bookmarks remain) and the caller's loop should stop.
func (f *Finder) FindWorst() Duplication {
	n := f.container.Size()
	if n < 2 {
		return Duplication{}
	}

	markIx := -1
	longest := 0
	for i := 0; i < n-1; i++ {
		if !f.container.SameAs(i, i+1, longest, f.processedLen) {
			continue
		}
		same := f.container.NrOfSame(i, i+1)
		if same > longest {
			longest = same
			markIx = i
		}
	}

	if markIx < 0 || longest < f.minLength {
		return Duplication{}
	}

	return f.expand(markIx, longest)
}

// expand performs Stage 2: proximity expansion outward from the central
// pair found by Stage 1.
func (f *Finder) expand(markIx, stage1Longest int) Duplication {
	almostLongest := stage1Longest * f.proximityFactor / 100
	longest := stage1Longest
	n := f.container.Size()

	forward := 0
	for idx := markIx + 2; idx < n; idx++ {
		same := f.container.NrOfSame(markIx, idx)
		if same < almostLongest {
			break
		}
		if same < longest {
			longest = same
		}
		forward++
	}

	backward := 0
	for idx := markIx - 1; idx >= 0; idx-- {
		same := f.container.NrOfSame(markIx, idx)
		if same < almostLongest {
			break
		}
		if same < longest {
			longest = same
		}
		backward++
	}

	return Duplication{
		Instances:          2 + forward + backward,
		LongestSame:        longest,
		IndexOf1stInstance: markIx - backward,
	}
}

// Instances returns the live bookmarks covered by dup, in sorted order.
func (f *Finder) Instances(dup Duplication) []bookmark.Bookmark {
	out := make([]bookmark.Bookmark, dup.Instances)
	for k := 0; k < dup.Instances; k++ {
		out[k] = f.container.At(dup.IndexOf1stInstance + k)
	}
	return out
}

// Invalidate clears every bookmark covered by dup's reported windows and
// compacts the container, so the next FindWorst call sees a clean sequence.
func (f *Finder) Invalidate(dup Duplication) {
	f.container.ClearWithin(dup.IndexOf1stInstance, dup.Instances, dup.LongestSame)
}
