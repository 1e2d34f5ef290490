// internal/storage/filename.go
package storage

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var filenameStrip = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a safe ASCII file name: compatibility
// decomposition, non-ASCII dropped, separators and whitespace collapsed to
// underscores, anything outside [A-Za-z0-9_.-] removed. The result may be
// empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	ascii := strings.ReplaceAll(b.String(), "/", " ")

	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(filenameStrip.ReplaceAllString(joined, ""), "._")
}

// SanitizePath sanitizes every component of a slash-separated path.
// Empty, "." and ".." components are dropped. It returns "" when nothing
// usable is left.
func SanitizePath(path string) string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if safe := SecureFilename(part); safe != "" {
			parts = append(parts, safe)
		}
	}
	return strings.Join(parts, "/")
}
