// Package options hand-parses dupfind's command line into an Options value.
// dupfind's grammar — a bare numeric flag (`-10`), attached short-flag
// values (`-m100`, `-p90`), and exclude-then-discover pairing
// (`-x substr -e suffix`) — doesn't fit a standard POSIX/GNU flag library's
// grammar, so this is parsed by hand; see DESIGN.md for why this is the one
// place dupfind departs from its usual cli library.
package options

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/standardbeagle/dupfind/internal/xerrors"
)

// Defaults for the flags below.
const (
	DefaultMaxReports      = 5
	DefaultProximityFactor = 90
	TotalModeMinLength     = 100
	TotalModeProximity     = 100
)

// Options is the fully-resolved configuration the core pipeline consumes.
type Options struct {
	MaxReports      int  // <=0 means unbounded
	MinLength       int
	WordMode        bool
	Verbose         bool
	Debug           bool
	Fingerprint     bool
	ProximityFactor int
	TotalMode       bool
	KeepTestFiles   bool
	ShowVersion     bool
	ShowUsage       bool
	Files           []string
}

func defaults() *Options {
	return &Options{MaxReports: DefaultMaxReports, ProximityFactor: DefaultProximityFactor}
}

// Parse interprets args (os.Args[1:]) into an Options value. warn receives
// non-fatal messages (skipped test-path positionals under -t); pass nil to
// discard them.
func Parse(args []string, warn io.Writer) (*Options, error) {
	opts := defaults()
	var positional []string
	pendingExclude := ""

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--help":
			opts.ShowUsage = true
			return opts, nil

		case a == "--version":
			opts.ShowVersion = true
			return opts, nil

		case a == "--debug":
			opts.Debug = true

		case a == "--fingerprint":
			opts.Fingerprint = true

		case a == "-w":
			opts.WordMode = true

		case a == "-v":
			opts.Verbose = true

		case a == "-t":
			opts.TotalMode = true
			opts.MinLength = TotalModeMinLength
			opts.ProximityFactor = TotalModeProximity
			opts.MaxReports = 0

		case a == "-T":
			opts.TotalMode = true
			opts.KeepTestFiles = true
			opts.MinLength = TotalModeMinLength
			opts.ProximityFactor = TotalModeProximity
			opts.MaxReports = 0

		case a == "-x":
			i++
			if i >= len(args) {
				return nil, xerrors.NewConfigError("x", "", fmt.Errorf("missing substring after -x"))
			}
			pendingExclude = args[i]

		case a == "-e":
			i++
			if i >= len(args) {
				return nil, xerrors.NewConfigError("e", "", fmt.Errorf("missing suffix after -e"))
			}
			found, err := DiscoverFiles(".", args[i], pendingExclude)
			if err != nil {
				return nil, err
			}
			positional = append(positional, found...)
			pendingExclude = ""

		case strings.HasPrefix(a, "-m"):
			n, err := attachedOrNextInt(a, 2, args, &i)
			if err != nil {
				return nil, xerrors.NewConfigError("m", a, err)
			}
			if n < 0 {
				return nil, xerrors.NewConfigError("m", a, fmt.Errorf("minimum length must be >= 0"))
			}
			opts.MinLength = n
			opts.MaxReports = 0

		case strings.HasPrefix(a, "-p"):
			n, err := attachedOrNextInt(a, 2, args, &i)
			if err != nil {
				return nil, xerrors.NewConfigError("p", a, err)
			}
			if n < 1 || n > 100 {
				return nil, xerrors.NewConfigError("p", a, fmt.Errorf("proximity must be between 1 and 100"))
			}
			opts.ProximityFactor = n

		case strings.HasPrefix(a, "-") && len(a) > 1 && isAllDigits(a[1:]):
			n, err := strconv.Atoi(a[1:])
			if err != nil || n <= 0 {
				return nil, xerrors.NewConfigError("n", a, fmt.Errorf("report count must be a positive integer"))
			}
			opts.MaxReports = n

		default:
			positional = append(positional, a)
		}
	}

	if opts.TotalMode && !opts.KeepTestFiles {
		positional = rejectTestPaths(positional, warn)
	}

	opts.Files = positional
	return opts, nil
}

// attachedOrNextInt parses an integer either attached to flag a (after
// prefixLen bytes, e.g. "-m100") or, if nothing follows the prefix, from the
// next argument (e.g. "-m 100"), advancing *i in that case.
func attachedOrNextInt(a string, prefixLen int, args []string, i *int) (int, error) {
	val := a[prefixLen:]
	if val == "" {
		*i++
		if *i >= len(args) {
			return 0, fmt.Errorf("missing value after %s", a[:prefixLen])
		}
		val = args[*i]
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	return n, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func rejectTestPaths(paths []string, warn io.Writer) []string {
	kept := paths[:0]
	for _, p := range paths {
		if strings.Contains(p, "test") {
			if warn != nil {
				fmt.Fprintf(warn, "warning: skipping %s (path contains \"test\", excluded by -t)\n", p)
			}
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// Usage is the text printed for -h/--help.
const Usage = `dupfind [options] file...

  -<n>          report at most n duplications (default 5)
  -m<n>         minimum duplication length in characters (implies unbounded reports)
  -w            word mode: treat input as prose, not code
  -v            verbose: print duplicated text
  -p<n>         proximity percent 1..100 (default 90)
  -x <substr>   exclude paths containing substr from the next -e
  -e <suffix>   recursively collect files ending with suffix
  -t            total-duplication mode (minLength=100, proximity=100, excludes test paths)
  -T            like -t but keep test paths
  -h            print this message and exit
`
