// internal/storage/snippet_store.go
package storage

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
)

// Snippet is a resolved snippet file.
type Snippet struct {
	Path        string
	ContentType string
	Data        []byte
}

// SnippetStore serves snippets from the uploads directory first, then
// from the bundled snippet directory.
type SnippetStore struct {
	uploads *FileStorage
	bundled *FileStorage
}

// NewSnippetStore creates a store. bundled may be nil.
func NewSnippetStore(uploads, bundled *FileStorage) *SnippetStore {
	return &SnippetStore{uploads: uploads, bundled: bundled}
}

// Uploads returns the uploads storage.
func (s *SnippetStore) Uploads() *FileStorage {
	return s.uploads
}

// Resolve sanitizes path and returns the first matching file.
func (s *SnippetStore) Resolve(path string) (*Snippet, error) {
	safe := SanitizePath(path)
	if safe == "" {
		return nil, apperrors.NewNotFoundError("snippet not found", nil)
	}

	for _, store := range []*FileStorage{s.uploads, s.bundled} {
		if store == nil {
			continue
		}
		data, err := store.LoadFile(safe)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if !store.FileExists(safe) {
				continue
			}
			return nil, apperrors.NewProcessingError("failed to read snippet", err)
		}
		return &Snippet{Path: safe, ContentType: contentTypeFor(safe, data), Data: data}, nil
	}
	return nil, apperrors.NewNotFoundError("snippet not found", nil)
}

// Invalidate drops cached content for a changed file or directory.
func (s *SnippetStore) Invalidate(path string) {
	for _, store := range []*FileStorage{s.uploads, s.bundled} {
		if store != nil {
			store.Invalidate(path)
		}
	}
}

func contentTypeFor(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
