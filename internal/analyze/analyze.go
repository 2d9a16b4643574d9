// Package analyze cross-references classified and extracted documents into
// a single analysis report: gaps, conflicts, coverage, and readiness.
// Everything here is pure set logic and arithmetic; no LLM calls are made.
package analyze

import (
	"sort"

	"github.com/planloom/planloom/internal/document"
)

// ExpectedTypes is the reference set a complete planning document set
// should cover.
var ExpectedTypes = []document.Type{
	document.TypeFunctionalSpecification,
	document.TypeTechnicalSpecification,
	document.TypeRequirementsDocument,
	document.TypeTestPlan,
	document.TypeUseCase,
}

// Readiness summarizes whether the document set is sufficient to plan from.
type Readiness string

// Readiness levels.
const (
	ReadinessHigh   Readiness = "high"
	ReadinessMedium Readiness = "medium"
	ReadinessLow    Readiness = "low"
)

// TaggedItem is a consolidated list entry tagged with its source document.
type TaggedItem struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Report is the full cross-document analysis result. It is recomputed
// whenever the document set changes and derived entirely from its inputs.
type Report struct {
	TotalDocuments       int              `json:"total_documents"`
	DocumentTypesPresent []document.Type  `json:"document_types_present"`
	DocumentTypesMissing []document.Type  `json:"document_types_missing"`
	LowTrustDocuments    []string         `json:"low_trust_documents,omitempty"`
	CoverageScore        float64          `json:"coverage_score"`
	Readiness            Readiness        `json:"readiness"`
	Gaps                 GapAnalysis      `json:"gaps"`
	Conflicts            ConflictAnalysis `json:"conflicts"`
	CommonRequirements   []string         `json:"common_requirements,omitempty"`
	CommonTechnologies   []string         `json:"common_technologies,omitempty"`
	CommonStakeholders   []string         `json:"common_stakeholders,omitempty"`
	AllRisks             []TaggedItem     `json:"all_risks,omitempty"`
	AllAssumptions       []TaggedItem     `json:"all_assumptions,omitempty"`
	AllDependencies      []TaggedItem     `json:"all_dependencies,omitempty"`
	AllConstraints       []TaggedItem     `json:"all_constraints,omitempty"`
	ConfidenceScore      float64          `json:"confidence_score"`
	CriticalQuestions    []string         `json:"critical_questions,omitempty"`
}

// DefaultOverlapThreshold is the word-overlap ratio above which two
// requirement descriptions are treated as the same requirement stated
// differently. A heuristic, deliberately tunable.
const DefaultOverlapThreshold = 0.5

// Analyzer computes Reports. The zero value uses default thresholds.
type Analyzer struct {
	// OverlapThreshold overrides DefaultOverlapThreshold when > 0.
	OverlapThreshold float64
}

// Analyze derives the report for one document set. Calling it twice on the
// same inputs yields identical scores; there is no hidden state.
func (a Analyzer) Analyze(classifications []document.Classification, extractions []document.ExtractedContent) Report {
	report := Report{TotalDocuments: len(classifications)}

	report.DocumentTypesPresent, report.DocumentTypesMissing = presenceSets(classifications)
	for _, c := range classifications {
		if c.LowTrust {
			report.LowTrustDocuments = append(report.LowTrustDocuments, c.Filename)
		}
	}
	report.Gaps = analyzeGaps(report.DocumentTypesMissing, extractions)
	report.Conflicts = a.analyzeConflicts(extractions)

	report.CommonRequirements = commonStrings(extractions, func(e document.ExtractedContent) []string {
		out := make([]string, 0, len(e.Requirements))
		for _, r := range e.Requirements {
			out = append(out, r.Description)
		}
		return out
	})
	report.CommonTechnologies = commonStrings(extractions, func(e document.ExtractedContent) []string { return e.Technologies })
	report.CommonStakeholders = commonStrings(extractions, func(e document.ExtractedContent) []string { return e.Stakeholders })

	report.AllRisks = consolidate(extractions, func(e document.ExtractedContent) []string { return e.Risks })
	report.AllAssumptions = consolidate(extractions, func(e document.ExtractedContent) []string { return e.Assumptions })
	report.AllDependencies = consolidate(extractions, func(e document.ExtractedContent) []string { return e.Dependencies })
	report.AllConstraints = consolidate(extractions, func(e document.ExtractedContent) []string { return e.Constraints })

	report.CoverageScore = coverageScore(report.DocumentTypesPresent, report.Gaps.MissingCriticalInfo, extractions)
	report.Readiness = readiness(report.CoverageScore, report.Conflicts.SeverityHigh)
	report.ConfidenceScore = confidenceScore(report.CoverageScore, classifications, extractions, report.Conflicts)
	report.CriticalQuestions = criticalQuestions(report)

	return report
}

// presenceSets partitions the expected type set by what the classifier saw.
func presenceSets(classifications []document.Classification) (present, missing []document.Type) {
	seen := make(map[document.Type]bool, len(classifications))
	for _, c := range classifications {
		if !seen[c.DocumentType] {
			seen[c.DocumentType] = true
			present = append(present, c.DocumentType)
		}
	}
	for _, t := range ExpectedTypes {
		if !seen[t] {
			missing = append(missing, t)
		}
	}
	return present, missing
}

// commonStrings returns values appearing in more than one document's
// extraction, counted case-insensitively but reported in first-seen form.
func commonStrings(extractions []document.ExtractedContent, field func(document.ExtractedContent) []string) []string {
	counts := make(map[string]int)
	first := make(map[string]string)
	for _, e := range extractions {
		seen := make(map[string]bool)
		for _, v := range field(e) {
			key := normalizeWord(v)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
			if _, ok := first[key]; !ok {
				first[key] = v
			}
		}
	}
	var out []string
	for key, n := range counts {
		if n > 1 {
			out = append(out, first[key])
		}
	}
	sort.Strings(out)
	return out
}

// consolidate flattens a list field from every extraction, tagging each
// entry with its source filename. No deduplication.
func consolidate(extractions []document.ExtractedContent, field func(document.ExtractedContent) []string) []TaggedItem {
	var out []TaggedItem
	for _, e := range extractions {
		for _, v := range field(e) {
			out = append(out, TaggedItem{Source: e.Filename, Text: v})
		}
	}
	return out
}
