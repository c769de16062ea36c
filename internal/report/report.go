// Package report renders a finder.Duplication as human-readable output:
// one line per instance, an optional verbose source dump, and a final
// percentage line in total mode.
package report

import (
	"fmt"
	"io"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/dupfind/internal/bookmark"
	"github.com/standardbeagle/dupfind/internal/corpus"
	"github.com/standardbeagle/dupfind/internal/finder"
	"github.com/standardbeagle/dupfind/pkg/pathutil"
)

// Reporter formats Duplications found in one Corpus/processed-buffer pair.
type Reporter struct {
	corpus    *corpus.Corpus
	original  []byte
	processed []byte
	wordMode  bool
	verbose   bool
	out       io.Writer
	root      string
}

// New creates a Reporter. processed is the Parser's output buffer for the
// same Corpus c.
func New(c *corpus.Corpus, processed []byte, wordMode, verbose bool, out io.Writer) *Reporter {
	return &Reporter{
		corpus:    c,
		original:  c.Original(),
		processed: processed,
		wordMode:  wordMode,
		verbose:   verbose,
		out:       out,
	}
}

// SetRoot configures the directory report paths are printed relative to
// (typically the working directory dupfind was invoked from). An empty root
// leaves paths untouched.
func (r *Reporter) SetRoot(root string) { r.root = root }

// Report prints dup as dupNumber (1-based), given its live bookmarks in
// sorted order (from finder.Finder.Instances).
func (r *Reporter) Report(dupNumber int, dup finder.Duplication, instances []bookmark.Bookmark) {
	for k, bm := range instances {
		path := pathutil.ToRelative(r.corpus.FileNameOf(bm.OriginalIndex), r.root)
		line := r.corpus.LineNumber(bm.OriginalIndex)
		ordinal := ordinalSuffix(k + 1)

		if k == 0 {
			_, lines := r.walkOriginal(bm, dup.LongestSame)
			fmt.Fprintf(r.out, "%s:%d:Duplication %d (%d%s instance, %d characters, %d line%s).\n",
				path, line, dupNumber, k+1, ordinal, dup.LongestSame, lines, plural(lines))
		} else {
			fmt.Fprintf(r.out, "%s:%d:Duplication %d (%d%s instance).\n", path, line, dupNumber, k+1, ordinal)
			if r.verbose {
				r.printSimilarity(instances[0], bm, dup.LongestSame)
			}
		}
	}
	if r.verbose && len(instances) > 0 {
		fmt.Fprintln(r.out, r.rawRegion(instances[0], dup.LongestSame))
	}
	fmt.Fprintln(r.out)
}

// CountLines returns the number of non-blank lines the first `length`
// processed characters starting at bm touch in the original buffer — the
// same count Report prints for a duplication's first instance, exposed so
// callers can accumulate a total-mode summary.
func (r *Reporter) CountLines(bm bookmark.Bookmark, length int) int {
	_, lines := r.walkOriginal(bm, length)
	return lines
}

// TotalLine prints the total-mode summary line. pct is computed as
// (100*sum + length/2) / length using integer division, which rounds to
// the nearest percent rather than truncating.
func (r *Reporter) TotalLine(totalLines int, weightedSum int64) {
	length := int64(len(r.processed))
	pct := int64(0)
	if length > 0 {
		pct = (100*weightedSum + length/2) / length
	}
	fmt.Fprintf(r.out, "Duplication = %d lines, %d %%\n", totalLines, pct)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// walkOriginal advances from bm.OriginalIndex through the original buffer,
// synchronizing byte-by-byte with the processed buffer starting at
// bm.Processed, for length processed characters. It returns the original
// offset just past the matched region and the number of non-blank lines
// touched along the way.
//
// Every original byte scanned while searching for the next sync point counts
// toward the line total, not only the byte the scan lands on: a line whose
// entire content was stripped from the processed stream (e.g. a `//...`
// comment) still contains non-whitespace bytes that are scanned here, and
// still counts as a touched line once its newline is reached. A run of
// scanned lines containing only whitespace does not advance the count; the
// first line is assumed non-blank and always contributes to the starting
// count of 1.
func (r *Reporter) walkOriginal(bm bookmark.Bookmark, length int) (int, int) {
	oi := bm.OriginalIndex
	pi := bm.Processed
	count := 1
	blankLine := true

	for c := 0; c < length; c++ {
		pc := r.processed[pi]
		for oi < len(r.original) {
			oc := r.original[oi]
			if oc == corpus.SpecialEOF {
				break
			}
			if oc == '\n' {
				if !blankLine {
					count++
					blankLine = true
				}
			} else if !isSpaceByte(oc) {
				blankLine = false
			}
			if oc == pc || (isSpaceByte(pc) && isSpaceByte(oc)) {
				break
			}
			oi++
		}
		if oi >= len(r.original) || r.original[oi] == corpus.SpecialEOF {
			break
		}
		oi++
		pi++
	}
	return oi, count
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// rawRegion returns the original source text covering the duplication
// starting at bm, for verbose output. Out of word mode it is extended
// backward to the preceding newline so indentation is preserved.
func (r *Reporter) rawRegion(bm bookmark.Bookmark, length int) string {
	end, _ := r.walkOriginal(bm, length)
	start := bm.OriginalIndex
	if !r.wordMode {
		for start > 0 && r.original[start-1] != '\n' {
			start--
		}
	}
	if end > len(r.original) {
		end = len(r.original)
	}
	return string(r.original[start:end])
}

// printSimilarity prints a Levenshtein-based similarity readout between the
// first instance's raw text and this instance's — a verbose-mode
// supplementary detail, not part of the finder's matching decision.
func (r *Reporter) printSimilarity(first, other bookmark.Bookmark, length int) {
	a := r.rawRegion(first, length)
	b := r.rawRegion(other, length)
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return
	}
	fmt.Fprintf(r.out, "    similarity to 1st instance: %.1f%%\n", similarity*100)
}
