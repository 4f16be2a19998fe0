package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const SourceExt = ".kt"

// Finder expands command line arguments into source files.
type Finder interface {
	Find(paths ...string) ([]string, error)
}

func NewFinder() Finder {
	return &finder{ext: SourceExt}
}

type finder struct {
	ext string
}

// Find returns the given files as is and walks directories for files with
// the source extension. Directory results are sorted; argument order is kept.
func (f *finder) Find(paths ...string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("source not found: %w", err)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}
		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(p, f.ext) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %v: %w", path, err)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}
