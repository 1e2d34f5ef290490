package playback

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
)

func TestSnippetFetcherMarkupAndText(t *testing.T) {
	var seenPath, seenAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.EscapedPath()
		seenAccept = r.Header.Get("Accept")
		switch r.URL.Path {
		case "/snippet/docs/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<h1>Doc</h1>"))
		case "/snippet/notes/my file#1.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Write([]byte("if a < b {\n}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewSnippetFetcher(srv.Client(), srv.URL, "/snippet/{path}")

	res, err := f.Fetch(context.Background(), "/docs/page.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Doc</h1>", res.Markup)
	assert.True(t, res.IsMarkup)
	assert.Equal(t, SnippetAccept, seenAccept)

	res, err = f.Fetch(context.Background(), `\notes/my file#1.txt`)
	require.NoError(t, err)
	assert.Equal(t, "/snippet/notes/my%20file%231.txt", seenPath)
	assert.Equal(t, `<pre class="snippet-text">if a &lt; b {`+"\n}</pre>", res.Markup)
	assert.True(t, res.IsMarkup)
}

func TestSnippetFetcherEmptyPath(t *testing.T) {
	f := NewSnippetFetcher(nil, "http://127.0.0.1:1", "/snippet/{path}")
	res, err := f.Fetch(context.Background(), "//")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestSnippetFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewSnippetFetcher(srv.Client(), "", srv.URL+"/snippet/{path}")
	_, err := f.Fetch(context.Background(), "broken.txt")
	require.Error(t, err)

	var fetchErr *apperrors.SnippetFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, "broken.txt", fetchErr.Path)
}

func TestSnippetFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	f := NewSnippetFetcher(nil, srv.URL, "/snippet/{path}")
	_, err := f.Fetch(context.Background(), "a.txt")
	assert.True(t, apperrors.IsSnippetFetchError(err))
}

func TestEncodeSnippetPath(t *testing.T) {
	assert.Equal(t, "a%20b/c%3Fd/e.txt", EncodeSnippetPath("a b/c?d/e.txt"))
	assert.Equal(t, "docs/a.html", NormalizeSnippetPath(" /docs/a.html"))
}
