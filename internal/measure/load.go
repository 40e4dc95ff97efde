package measure

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ReadReport loads a coverage report, picking the parser from the extension:
// .json is read as gcovr JSON, anything else as an lcov tracefile.
func (m *Model) ReadReport(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return m.ReadGcovrJSON(path)
	}
	return m.ReadLCOV(path)
}

// skipDirs are never walked for sources.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// WalkSources registers every file under root whose language is recognised.
func (m *Model) WalkSources(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if Language(path) == "" {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		m.AddSource(abs)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk sources under %s: %w", root, err)
	}
	return nil
}
