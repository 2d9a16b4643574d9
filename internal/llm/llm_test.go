package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"surrounding prose", `Sure! Here you go: {"a":1} hope that helps`, `{"a":1}`, true},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"nested object", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"no object", "there is nothing structured here", "", false},
		{"only open brace", "broken { output", "", false},
		{"reversed braces", "} before {", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ExtractJSON([]byte(tt.in))
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, string(got))
			}
		})
	}
}

func TestEscapeBraces(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{{"key": "value"}}`, EscapeBraces(`{"key": "value"}`))
	assert.Equal(t, "no braces here", EscapeBraces("no braces here"))
	assert.Equal(t, "{{{{double}}}}", EscapeBraces("{{double}}"))
}

func TestGeneratorFunc(t *testing.T) {
	t.Parallel()

	gen := GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return "echo: " + prompt, nil
	})
	out, err := gen.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
}
