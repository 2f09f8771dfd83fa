package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/meteovis/meteovis/internal/domain"
)

// DiscoverFiles returns every regular, non-hidden file under root in walk
// order. Hidden directories are not descended into.
func DiscoverFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != root && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover files in %s: %w", root, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoInputFiles, root)
	}
	return files, nil
}
