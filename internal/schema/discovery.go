package schema

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadDir loads every *.graphql file under root as one document. Sources are
// named by their path relative to root.
func LoadDir(root string) (*Document, error) {
	var srcs []Source
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ".graphql" {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %q: %w", path, err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}
		srcs = append(srcs, Source{Name: filepath.ToSlash(relPath), Input: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no .graphql files found under %q", root)
	}
	return LoadSources(srcs...)
}
