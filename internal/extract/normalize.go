package extract

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/document"
)

// normalizeLists converts the loose record lists into typed records.
// Validation happens here, at the extraction boundary, so the analyzer can
// assume well-typed input. Entries that are neither objects nor strings are
// skipped with a note.
func normalizeLists(content *document.ExtractedContent, rc rawContent, filename string) []string {
	var notes []string
	skip := func(kind string, i int) {
		note := fmt.Sprintf("skipped malformed %s entry %d", kind, i)
		log.Warn().Str("file", filename).Msg(note)
		notes = append(notes, note)
	}

	for i, raw := range rc.KeySections {
		var s document.Section
		if err := json.Unmarshal(raw, &s); err == nil && (s.Title != "" || s.Content != "") {
			content.KeySections = append(content.KeySections, s)
			continue
		}
		skip("key_sections", i)
	}

	for i, raw := range rc.Requirements {
		var r document.Requirement
		if err := json.Unmarshal(raw, &r); err == nil && r.Description != "" {
			content.Requirements = append(content.Requirements, r)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			content.Requirements = append(content.Requirements, document.Requirement{Description: s})
			continue
		}
		skip("requirements", i)
	}

	for i, raw := range rc.Features {
		var f document.Feature
		if err := json.Unmarshal(raw, &f); err == nil && f.Name != "" {
			content.Features = append(content.Features, f)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			content.Features = append(content.Features, document.Feature{Name: s})
			continue
		}
		skip("features", i)
	}

	for i, raw := range rc.TestCases {
		var tc document.TestCase
		if err := json.Unmarshal(raw, &tc); err == nil && tc.Description != "" {
			content.TestCases = append(content.TestCases, tc)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			content.TestCases = append(content.TestCases, document.TestCase{Description: s})
			continue
		}
		skip("test_cases", i)
	}

	for i, raw := range rc.UseCases {
		var uc document.UseCase
		if err := json.Unmarshal(raw, &uc); err == nil && uc.Name != "" {
			content.UseCases = append(content.UseCases, uc)
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			content.UseCases = append(content.UseCases, document.UseCase{Name: s})
			continue
		}
		skip("use_cases", i)
	}

	return notes
}
