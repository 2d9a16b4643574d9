package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/ingest"
	"github.com/planloom/planloom/internal/llm"
)

func staticGen(reply string) llm.Generator {
	return llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return reply, nil
	})
}

func TestClassify_WellFormedReply(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{
		"document_type": "technical_specification",
		"confidence": 0.92,
		"secondary_types": [{"type": "api_documentation", "confidence": 0.4}],
		"key_indicators": ["architecture diagram", "component list"]
	}`))

	cls := c.Classify(context.Background(), ingest.Document{
		Filename: "arch.pdf",
		Filepath: "/docs/arch.pdf",
		Text:     "System architecture overview.",
	})

	assert.Equal(t, document.TypeTechnicalSpecification, cls.DocumentType)
	assert.InDelta(t, 0.92, cls.Confidence, 1e-9)
	require.Len(t, cls.SecondaryTypes, 1)
	assert.Equal(t, document.TypeAPIDocumentation, cls.SecondaryTypes[0].Type)
	assert.Equal(t, []string{"architecture diagram", "component list"}, cls.KeyIndicators)
	assert.Equal(t, "arch.pdf", cls.Filename)
}

func TestClassify_GarbageReplyDegrades(t *testing.T) {
	t.Parallel()

	c := New(staticGen("definitely not json, just rambling text"))

	cls := c.Classify(context.Background(), ingest.Document{Filename: "junk.pdf", Text: "noise"})

	assert.Equal(t, document.TypeUnknown, cls.DocumentType)
	assert.Zero(t, cls.Confidence)
	require.Len(t, cls.KeyIndicators, 1)
	assert.Contains(t, cls.KeyIndicators[0], "no JSON object")
}

func TestClassify_GenerationFailureDegrades(t *testing.T) {
	t.Parallel()

	c := New(llm.GeneratorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	}))

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})

	assert.Equal(t, document.TypeUnknown, cls.DocumentType)
	assert.Zero(t, cls.Confidence)
	require.Len(t, cls.KeyIndicators, 1)
	assert.Contains(t, cls.KeyIndicators[0], "connection refused")
}

func TestClassify_UnknownTypeNameMapsToUnknown(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{"document_type": "grocery_list", "confidence": 0.8}`))

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})
	assert.Equal(t, document.TypeUnknown, cls.DocumentType)
	assert.InDelta(t, 0.8, cls.Confidence, 1e-9)
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{"document_type": "use_case", "confidence": 1.7}`))

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})
	assert.Equal(t, 1.0, cls.Confidence)
}

func TestSample_BoundsPagesAndChars(t *testing.T) {
	t.Parallel()

	c := &Classifier{SamplePages: 2, MaxPageChars: 5}
	text := "aaaaaaaaaa\fbbbbbbbbbb\fcccccccccc"

	got := c.sample(text)
	assert.Equal(t, "aaaaa\nbbbbb", got)
}

func TestSample_PromptReceivesBoundedSample(t *testing.T) {
	t.Parallel()

	var gotPrompt string
	gen := llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return `{"document_type": "unknown", "confidence": 0}`, nil
	})
	c := New(gen)
	c.SamplePages = 1
	c.MaxPageChars = 10

	longPage := strings.Repeat("x", 100)
	c.Classify(context.Background(), ingest.Document{Filename: "big.pdf", Text: longPage + "\fsecond page"})

	assert.NotContains(t, gotPrompt, "second page")
	assert.NotContains(t, gotPrompt, strings.Repeat("x", 11))
	assert.Contains(t, gotPrompt, strings.Repeat("x", 10))
}

func TestClassify_BelowThresholdMarkedLowTrust(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{"document_type": "use_case", "confidence": 0.3}`))
	c.ConfidenceThreshold = 0.5

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})
	assert.True(t, cls.LowTrust)
	assert.Equal(t, document.TypeUseCase, cls.DocumentType)
}

func TestClassify_AtThresholdNotLowTrust(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{"document_type": "use_case", "confidence": 0.5}`))
	c.ConfidenceThreshold = 0.5

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})
	assert.False(t, cls.LowTrust)
}

func TestClassify_ZeroThresholdDisablesLowTrust(t *testing.T) {
	t.Parallel()

	c := New(staticGen(`{"document_type": "use_case", "confidence": 0.0}`))

	cls := c.Classify(context.Background(), ingest.Document{Filename: "a.pdf", Text: "text"})
	assert.False(t, cls.LowTrust)
}

func TestClassify_DegradedReplyMarkedLowTrust(t *testing.T) {
	t.Parallel()

	c := New(staticGen("not json at all"))
	c.ConfidenceThreshold = 0.5

	cls := c.Classify(context.Background(), ingest.Document{Filename: "junk.pdf", Text: "noise"})
	assert.True(t, cls.LowTrust)
	assert.Equal(t, document.TypeUnknown, cls.DocumentType)
}

func TestSample_KeepsRunesIntact(t *testing.T) {
	t.Parallel()

	c := &Classifier{SamplePages: 1, MaxPageChars: 2}

	// The two-byte cap lands inside the two-byte é, so the cut must back
	// off to the rune boundary instead of emitting half a rune.
	got := c.sample("héllo")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "h", got)
}
