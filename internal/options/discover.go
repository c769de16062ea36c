package options

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/dupfind/internal/xerrors"
)

// DiscoverFiles recursively collects, under root, every file whose path ends
// with suffix, skipping any path containing exclude (when exclude is
// non-empty), and returns them sorted lexicographically. Backs the `-e`/`-x`
// discovery flags.
func DiscoverFiles(root, suffix, exclude string) ([]string, error) {
	pattern := "**/*" + suffix
	var matches []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if exclude != "" && strings.Contains(rel, exclude) {
			return nil
		}

		ok, matchErr := doublestar.Match(pattern, rel)
		if matchErr != nil {
			return matchErr
		}
		if ok || strings.HasSuffix(rel, suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, xerrors.NewIOError("walk", root, err)
	}

	sort.Strings(matches)
	return matches, nil
}
