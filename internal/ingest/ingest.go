// Package ingest reads project documents from disk and normalizes them to
// plain text for the pipeline. PDF conversion is delegated to an external
// converter command; ingest itself never parses binary formats.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
)

// Document is raw text pulled from one file.
type Document struct {
	Filename  string
	Filepath  string
	Text      string
	PageCount int
}

// Failed reports whether the text is an inline extraction error marker.
// Extraction failures flow downstream as suspicious low-confidence text
// rather than hard errors, so one bad file never blocks the rest.
func (d Document) Failed() bool {
	return strings.HasPrefix(d.Text, errorMarker)
}

const errorMarker = "[EXTRACTION ERROR]"

// ErrorDocument builds a Document carrying an inline error marker.
func ErrorDocument(path string, err error) Document {
	return Document{
		Filename: filepath.Base(path),
		Filepath: path,
		Text:     errorMarker + " " + err.Error(),
	}
}

// ContentHash returns the cache key for a document's content.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// FileSetHash returns a stable key for a set of file paths, independent of
// order. Used to key derived analysis reports.
func FileSetHash(paths []string) string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:])
}
