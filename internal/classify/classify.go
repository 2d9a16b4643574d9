// Package classify assigns a document type to raw document text using the
// LLM collaborator against a fixed taxonomy.
package classify

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/ingest"
	"github.com/planloom/planloom/internal/llm"
)

const (
	defaultSamplePages  = 3
	defaultMaxPageChars = 4000
)

// Classifier delegates category judgment to a Generator. The sample sent to
// the model is bounded to control cost, not correctness.
type Classifier struct {
	gen llm.Generator

	// SamplePages and MaxPageChars bound the text sample. Zero values fall
	// back to the defaults.
	SamplePages  int
	MaxPageChars int

	// ConfidenceThreshold marks classifications below it as low-trust.
	// The reported type is preserved either way.
	ConfidenceThreshold float64
}

// New constructs a Classifier with default sample bounds.
func New(gen llm.Generator) *Classifier {
	return &Classifier{gen: gen}
}

type classifyReply struct {
	DocumentType   string   `json:"document_type"`
	Confidence     float64  `json:"confidence"`
	SecondaryTypes []struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
	} `json:"secondary_types"`
	KeyIndicators []string `json:"key_indicators"`
}

// Classify labels one document. Malformed model output degrades to an
// unknown/zero-confidence classification carrying the parse error; it is
// never surfaced as an error.
func (c *Classifier) Classify(ctx context.Context, doc ingest.Document) document.Classification {
	sample := c.sample(doc.Text)
	cls := document.Classification{
		Filename:        doc.Filename,
		Filepath:        doc.Filepath,
		PageCount:       doc.PageCount,
		ExtractedSample: sample,
	}

	raw, err := c.gen.Generate(ctx, buildPrompt(sample, doc.Filename))
	if err != nil {
		log.Warn().Err(err).Str("file", doc.Filename).Msg("classification call failed")
		cls.DocumentType = document.TypeUnknown
		cls.KeyIndicators = []string{"generation failed: " + err.Error()}
		return c.markTrust(cls)
	}

	payload, ok := llm.ExtractJSON([]byte(raw))
	if !ok {
		return c.markTrust(fallback(cls, "no JSON object in classifier response"))
	}
	var reply classifyReply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return c.markTrust(fallback(cls, "parse classifier response: "+err.Error()))
	}

	cls.DocumentType = document.ParseType(reply.DocumentType)
	cls.Confidence = clamp01(reply.Confidence)
	cls.KeyIndicators = reply.KeyIndicators
	for _, st := range reply.SecondaryTypes {
		cls.SecondaryTypes = append(cls.SecondaryTypes, document.SecondaryType{
			Type:       document.ParseType(st.Type),
			Confidence: clamp01(st.Confidence),
		})
	}

	return c.markTrust(cls)
}

// markTrust flags the classification when its confidence falls below the
// configured threshold, so the report can surface it alongside the log.
func (c *Classifier) markTrust(cls document.Classification) document.Classification {
	if c.ConfidenceThreshold <= 0 || cls.Confidence >= c.ConfidenceThreshold {
		return cls
	}
	cls.LowTrust = true
	log.Info().
		Str("file", cls.Filename).
		Str("type", string(cls.DocumentType)).
		Float64("confidence", cls.Confidence).
		Msg("low-trust classification")
	return cls
}

func fallback(cls document.Classification, reason string) document.Classification {
	log.Warn().Str("file", cls.Filename).Str("reason", reason).Msg("classification degraded")
	cls.DocumentType = document.TypeUnknown
	cls.Confidence = 0
	cls.KeyIndicators = []string{reason}
	return cls
}

// sample takes the first SamplePages pages, each capped at MaxPageChars.
func (c *Classifier) sample(text string) string {
	pages := c.SamplePages
	if pages <= 0 {
		pages = defaultSamplePages
	}
	maxChars := c.MaxPageChars
	if maxChars <= 0 {
		maxChars = defaultMaxPageChars
	}

	split := strings.Split(text, "\f")
	if len(split) > pages {
		split = split[:pages]
	}
	var b strings.Builder
	for i, page := range split {
		page = cutAtRune(page, maxChars)
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(page)
	}
	return b.String()
}

// cutAtRune caps s at n bytes without splitting a multi-byte rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
