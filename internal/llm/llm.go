// Package llm is the single boundary to the text-generation collaborator.
// Everything above this package only ever sees plain strings.
package llm

import (
	"bytes"
	"context"
	"strings"
)

// Generator produces text for a prompt. Implementations block until the
// provider returns or the context is cancelled.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ExtractJSON recovers a JSON object from free-form model output. It strips
// markdown code fences and slices from the first '{' to the last '}'.
// Returns false when no object boundary can be found.
func ExtractJSON(data []byte) ([]byte, bool) {
	data = stripFences(data)
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start == -1 || end == -1 || start >= end {
		return nil, false
	}
	return data[start : end+1], true
}

func stripFences(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if !strings.HasPrefix(s, "```") {
		return data
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(s)
}

// EscapeBraces doubles literal brace characters so interpolated document
// content cannot break prompt template formatting.
func EscapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
