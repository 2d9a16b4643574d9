package analyze

import (
	"fmt"

	"github.com/planloom/planloom/internal/document"
)

// coverageScore is the weighted checklist score:
// 0.4 · expected-type coverage + 0.4 · critical-info coverage +
// 0.2 · mean extraction confidence. Clamped to [0,1].
func coverageScore(present []document.Type, missingInfo []string, extractions []document.ExtractedContent) float64 {
	presentExpected := 0
	expected := make(map[document.Type]bool, len(ExpectedTypes))
	for _, t := range ExpectedTypes {
		expected[t] = true
	}
	for _, t := range present {
		if expected[t] {
			presentExpected++
		}
	}

	typeTerm := float64(presentExpected) / float64(len(ExpectedTypes))
	infoTerm := 1 - float64(len(missingInfo))/float64(CriticalCategoryCount)
	confTerm := meanExtractionConfidence(extractions)

	return clamp01(0.4*typeTerm + 0.4*infoTerm + 0.2*confTerm)
}

// readiness is a deterministic function of coverage and high-severity
// conflict count. The high branch is checked first.
func readiness(coverage float64, severityHigh int) Readiness {
	switch {
	case coverage >= 0.8 && severityHigh == 0:
		return ReadinessHigh
	case coverage >= 0.5 && severityHigh <= 1:
		return ReadinessMedium
	default:
		return ReadinessLow
	}
}

// confidenceScore blends coverage, classification confidence, extraction
// confidence, and a capped conflict penalty. Clamped to [0,1].
func confidenceScore(coverage float64, classifications []document.Classification, extractions []document.ExtractedContent, conflicts ConflictAnalysis) float64 {
	penalty := 0.1*float64(conflicts.SeverityHigh) + 0.05*float64(conflicts.SeverityMedium)
	if penalty > 0.3 {
		penalty = 0.3
	}

	score := 0.4*coverage +
		0.2*meanClassificationConfidence(classifications) +
		0.2*meanExtractionConfidence(extractions) +
		0.2*(1-penalty)
	return clamp01(score)
}

func meanClassificationConfidence(classifications []document.Classification) float64 {
	if len(classifications) == 0 {
		return 0
	}
	var sum float64
	for _, c := range classifications {
		sum += c.Confidence
	}
	return sum / float64(len(classifications))
}

func meanExtractionConfidence(extractions []document.ExtractedContent) float64 {
	if len(extractions) == 0 {
		return 0
	}
	var sum float64
	for _, e := range extractions {
		sum += e.ExtractionConfidence
	}
	return sum / float64(len(extractions))
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

// criticalQuestions generates clarifying questions by deterministic rule.
func criticalQuestions(report Report) []string {
	var out []string

	missing := make(map[document.Type]bool)
	for _, t := range report.DocumentTypesMissing {
		missing[t] = true
	}
	if missing[document.TypeTechnicalSpecification] {
		out = append(out, "What is the intended technology stack and system architecture?")
	}
	if missing[document.TypeRequirementsDocument] {
		out = append(out, "Can detailed, prioritized requirements be provided?")
	}
	if missing[document.TypeTestPlan] {
		out = append(out, "How will the delivered system be verified and accepted?")
	}

	for _, area := range report.Gaps.LowCoverageAreas {
		if area.Severity == SeverityHigh {
			out = append(out, fmt.Sprintf("How should the gap in %s be resolved? %s", area.Area, area.Impact))
		}
	}
	for _, c := range append(append([]Conflict{}, report.Conflicts.Conflicts...), report.Conflicts.Inconsistencies...) {
		if c.Severity == SeverityHigh {
			out = append(out, fmt.Sprintf("Please clarify the following conflict: %s", c.Description))
		}
	}

	return out
}
