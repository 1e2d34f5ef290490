// internal/services/local_sources.go
package services

import (
	"context"
	"net/http"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/playback"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
)

// LocalSnippets serves snippets from a SnippetStore without HTTP, with the
// same rendering and errors as playback.SnippetFetcher.
type LocalSnippets struct {
	Store *storage.SnippetStore
}

// Fetch implements playback.SnippetSource.
func (l LocalSnippets) Fetch(ctx context.Context, path string) (*models.SnippetResult, error) {
	normalized := playback.NormalizeSnippetPath(path)
	if normalized == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &apperrors.SnippetFetchError{Path: normalized, Err: err}
	}

	snippet, err := l.Store.Resolve(normalized)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		return nil, &apperrors.SnippetFetchError{Path: normalized, StatusCode: status, Err: err}
	}
	return playback.SnippetResultFor(snippet.ContentType, snippet.Data), nil
}
