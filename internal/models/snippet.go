// internal/models/snippet.go
package models

// SnippetResult is retrieved snippet content. IsMarkup reports whether
// Markup is safe structured markup; plain text is escaped and wrapped
// before it is returned, so fetched results always carry IsMarkup.
type SnippetResult struct {
	Markup   string `json:"markup"`
	IsMarkup bool   `json:"is_markup"`
}
