// Command dupfind finds the longest duplicated regions across a set of
// source files and reports each occurrence as file:line.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp/v3"

	"github.com/standardbeagle/dupfind/internal/bookmark"
	"github.com/standardbeagle/dupfind/internal/corpus"
	"github.com/standardbeagle/dupfind/internal/finder"
	"github.com/standardbeagle/dupfind/internal/options"
	"github.com/standardbeagle/dupfind/internal/parser"
	"github.com/standardbeagle/dupfind/internal/report"
	"github.com/standardbeagle/dupfind/internal/version"
	"github.com/standardbeagle/dupfind/internal/xerrors"
	"github.com/standardbeagle/dupfind/pkg/pathutil"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := options.Parse(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, options.Usage)
		return 1
	}
	if opts.ShowUsage {
		fmt.Fprint(stdout, options.Usage)
		return 0
	}
	if opts.ShowVersion {
		fmt.Fprintln(stdout, version.FullInfo())
		return 0
	}

	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "no input files given")
		fmt.Fprint(stderr, options.Usage)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	absFiles := make([]string, len(opts.Files))
	for i, f := range opts.Files {
		if filepath.IsAbs(f) {
			absFiles[i] = f
			continue
		}
		absFiles[i] = filepath.Join(cwd, f)
	}

	c := corpus.New()
	for _, f := range absFiles {
		if err := c.AddFile(f); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	c.AddSentinelRecord()

	// Every file adds one SPECIAL_EOF byte, so a corpus made only of those
	// sentinels holds no input bytes.
	if c.TotalLength() == len(absFiles) {
		fmt.Fprintln(stderr, xerrors.NewEmptyCorpusError("all inputs were empty files"))
		return 1
	}

	if opts.Fingerprint {
		for _, f := range absFiles {
			if sum, ok := c.Fingerprint(f); ok {
				fmt.Fprintf(stderr, "fingerprint %016x %s\n", sum, pathutil.ToRelative(f, cwd))
			}
		}
	}

	p := parser.New(opts.WordMode)
	processed, bms := p.Parse(c)

	container := bookmark.NewContainer(processed, bms)
	container.Sort()

	f := finder.New(container, len(processed), opts.MinLength, opts.ProximityFactor)
	reporter := report.New(c, processed, opts.WordMode, opts.Verbose, stdout)
	reporter.SetRoot(cwd)

	var totalLines int
	var weightedSum int64
	count := 0
	for opts.MaxReports <= 0 || count < opts.MaxReports {
		dup := f.FindWorst()
		if dup.Instances == 0 {
			break
		}
		instances := f.Instances(dup)

		if opts.Debug {
			fmt.Fprintln(stderr, "--debug: duplication and winning bookmarks")
			_, _ = pp.Fprintln(stderr, dup)
			_, _ = pp.Fprintln(stderr, instances)
		}

		count++
		reporter.Report(count, dup, instances)

		weightedSum += int64(dup.LongestSame) * int64(dup.Instances)
		totalLines += reporter.CountLines(instances[0], dup.LongestSame)

		f.Invalidate(dup)
	}

	if opts.TotalMode {
		reporter.TotalLine(totalLines, weightedSum)
	}

	return 0
}
