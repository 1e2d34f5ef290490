// internal/playback/snippet_fetcher.go
package playback

import (
	"context"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
)

// SnippetAccept prefers markup over plain text.
const SnippetAccept = "text/html, text/plain;q=0.9, */*;q=0.5"

// SnippetSource resolves a snippet reference.
type SnippetSource interface {
	Fetch(ctx context.Context, path string) (*models.SnippetResult, error)
}

// SnippetFetcher retrieves snippets from the snippet endpoint.
type SnippetFetcher struct {
	client   *http.Client
	baseURL  string
	template string
}

// NewSnippetFetcher creates a fetcher for template, which must contain
// {path}. Relative templates are resolved against baseURL.
func NewSnippetFetcher(client *http.Client, baseURL, template string) *SnippetFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &SnippetFetcher{client: client, baseURL: strings.TrimRight(baseURL, "/"), template: template}
}

// NormalizeSnippetPath strips leading separators.
func NormalizeSnippetPath(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), `/\`)
}

// EncodeSnippetPath percent-encodes each segment and keeps the slashes.
func EncodeSnippetPath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Fetch returns nil, nil when path is empty after normalization.
func (f *SnippetFetcher) Fetch(ctx context.Context, path string) (*models.SnippetResult, error) {
	normalized := NormalizeSnippetPath(path)
	if normalized == "" {
		return nil, nil
	}

	endpoint := strings.Replace(f.template, "{path}", EncodeSnippetPath(normalized), 1)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = f.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &apperrors.SnippetFetchError{Path: normalized, Err: err}
	}
	req.Header.Set("Accept", SnippetAccept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperrors.SnippetFetchError{Path: normalized, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.SnippetFetchError{Path: normalized, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.SnippetFetchError{Path: normalized, Err: fmt.Errorf("read body: %w", err)}
	}

	return SnippetResultFor(resp.Header.Get("Content-Type"), body), nil
}

// SnippetResultFor renders a snippet body by content type: markup is kept
// as is, anything else is escaped into a preformatted block.
func SnippetResultFor(contentType string, body []byte) *models.SnippetResult {
	if isMarkupType(contentType) {
		return &models.SnippetResult{Markup: string(body), IsMarkup: true}
	}
	return &models.SnippetResult{Markup: WrapPlainText(string(body)), IsMarkup: true}
}

// WrapPlainText escapes text into a preformatted block.
func WrapPlainText(text string) string {
	return `<pre class="snippet-text">` + html.EscapeString(text) + `</pre>`
}

func isMarkupType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
