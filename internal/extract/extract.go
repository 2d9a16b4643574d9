// Package extract pulls structured content out of classified documents via
// the LLM collaborator and normalizes it into well-typed records.
package extract

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/llm"
)

// Extractor is a pure function of its inputs plus the LLM call.
type Extractor struct {
	gen llm.Generator
}

// New constructs an Extractor.
func New(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// rawContent mirrors the JSON the model is asked for, with list fields kept
// loose so malformed entries can be normalized instead of failing the parse.
type rawContent struct {
	Title        string            `json:"title"`
	Summary      string            `json:"summary"`
	KeySections  []json.RawMessage `json:"key_sections"`
	Requirements []json.RawMessage `json:"requirements"`
	Features     []json.RawMessage `json:"features"`
	TestCases    []json.RawMessage `json:"test_cases"`
	UseCases     []json.RawMessage `json:"use_cases"`
	Risks        []string          `json:"risks"`
	Assumptions  []string          `json:"assumptions"`
	Dependencies []string          `json:"dependencies"`
	Constraints  []string          `json:"constraints"`
	Technologies []string          `json:"technologies"`
	Stakeholders []string          `json:"stakeholders"`
	Systems      []string          `json:"systems"`
	Keywords     []string          `json:"keywords"`
	Confidence   float64           `json:"extraction_confidence"`
}

// Extract produces the structured record for one document. Malformed model
// output degrades to a minimal record with zero confidence and a note; it
// never returns an error to the caller.
func (e *Extractor) Extract(ctx context.Context, text string, docType document.Type, filename string) document.ExtractedContent {
	content := document.ExtractedContent{
		Filename:     filename,
		DocumentType: docType,
	}

	raw, err := e.gen.Generate(ctx, buildPrompt(text, docType, filename))
	if err != nil {
		log.Warn().Err(err).Str("file", filename).Msg("extraction call failed")
		content.ExtractionNotes = []string{"generation failed: " + err.Error()}
		return content
	}

	payload, ok := llm.ExtractJSON([]byte(raw))
	if !ok {
		return degraded(content, "no JSON object in extractor response")
	}
	var rc rawContent
	if err := json.Unmarshal(payload, &rc); err != nil {
		return degraded(content, "parse extractor response: "+err.Error())
	}

	content.Title = rc.Title
	content.Summary = rc.Summary
	content.Risks = rc.Risks
	content.Assumptions = rc.Assumptions
	content.Dependencies = rc.Dependencies
	content.Constraints = rc.Constraints
	content.Technologies = rc.Technologies
	content.Stakeholders = rc.Stakeholders
	content.Systems = rc.Systems
	content.Keywords = rc.Keywords
	content.ExtractionConfidence = clamp01(rc.Confidence)

	notes := normalizeLists(&content, rc, filename)
	content.ExtractionNotes = notes

	return content
}

func degraded(content document.ExtractedContent, reason string) document.ExtractedContent {
	log.Warn().Str("file", content.Filename).Str("reason", reason).Msg("extraction degraded")
	content.ExtractionConfidence = 0
	content.ExtractionNotes = []string{reason}
	return content
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
