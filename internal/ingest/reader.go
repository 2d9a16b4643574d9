package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Reader turns a file path into document text. Implementations return an
// error-marker Document instead of failing, per the extractor contract.
type Reader interface {
	Read(ctx context.Context, path string) Document
}

// PlainReader reads text and markdown files directly from disk.
type PlainReader struct{}

// Read implements Reader.
func (PlainReader) Read(_ context.Context, path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("read document failed")
		return ErrorDocument(path, err)
	}
	text := string(data)
	return Document{
		Filename:  filepath.Base(path),
		Filepath:  path,
		Text:      text,
		PageCount: estimatePages(text),
	}
}

// ExecReader shells out to an external converter (pdftotext style) that
// writes the document text to stdout.
type ExecReader struct {
	// Cmd is the converter argv; the file path is appended as the final
	// argument. Example: []string{"pdftotext", "-layout"}.
	Cmd []string
}

// Read implements Reader.
func (r ExecReader) Read(ctx context.Context, path string) Document {
	if len(r.Cmd) == 0 {
		return ErrorDocument(path, fmt.Errorf("converter command not configured"))
	}

	args := append(append([]string{}, r.Cmd[1:]...), path, "-")
	cmd := exec.CommandContext(ctx, r.Cmd[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Warn().
			Err(err).
			Str("path", path).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("converter failed")
		return ErrorDocument(path, fmt.Errorf("convert %s: %w", filepath.Base(path), err))
	}

	text := stdout.String()
	return Document{
		Filename:  filepath.Base(path),
		Filepath:  path,
		Text:      text,
		PageCount: countFormFeeds(text),
	}
}

// ForPath picks the reader for a file by extension: the converter for PDFs,
// the plain reader for everything else.
func ForPath(path string, converter ExecReader) Reader {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return converter
	}
	return PlainReader{}
}

// estimatePages approximates a page count for plain text at roughly 3000
// characters per page, minimum 1.
func estimatePages(text string) int {
	const charsPerPage = 3000
	pages := (len(text) + charsPerPage - 1) / charsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// countFormFeeds counts pdftotext page separators, minimum 1.
func countFormFeeds(text string) int {
	pages := strings.Count(text, "\f")
	if pages < 1 {
		pages = 1
	}
	return pages
}
