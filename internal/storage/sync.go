// internal/storage/sync.go
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SyncSnippetTree copies files under src that are missing from dst,
// preserving the directory structure. Existing files in dst are never
// overwritten. It returns the number of files copied.
func SyncSnippetTree(src string, dst *FileStorage) (int, error) {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if dst.FileExists(rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := dst.SaveFile(rel, data); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}
