// Package assemble renders the analysis report and per-document extractions
// into the single markdown planning context the reflection loop consumes.
package assemble

import (
	"fmt"
	"strings"

	"github.com/planloom/planloom/internal/analyze"
	"github.com/planloom/planloom/internal/document"
)

// Context renders the planning context document. The rendering is
// deterministic: same inputs, same markdown.
func Context(extractions []document.ExtractedContent, report analyze.Report) string {
	var b strings.Builder

	b.WriteString("# Planning Context\n\n")
	fmt.Fprintf(&b, "Documents analyzed: %d  \n", report.TotalDocuments)
	fmt.Fprintf(&b, "Coverage score: %.2f  \n", report.CoverageScore)
	fmt.Fprintf(&b, "Confidence score: %.2f  \n", report.ConfidenceScore)
	fmt.Fprintf(&b, "Readiness: %s\n", report.Readiness)
	if len(report.LowTrustDocuments) > 0 {
		fmt.Fprintf(&b, "Low-trust classifications: %s\n", strings.Join(report.LowTrustDocuments, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Documents\n\n")
	for _, e := range extractions {
		fmt.Fprintf(&b, "### %s (%s)\n\n", e.Filename, e.DocumentType)
		if e.Title != "" {
			fmt.Fprintf(&b, "**Title:** %s\n\n", e.Title)
		}
		if e.Summary != "" {
			b.WriteString(e.Summary)
			b.WriteString("\n\n")
		}
	}

	writeRequirements(&b, extractions)
	writeFeatures(&b, extractions)
	writeTechnicalContext(&b, report)
	writeTagged(&b, "Risks", report.AllRisks)
	writeTagged(&b, "Dependencies", report.AllDependencies)
	writeTagged(&b, "Constraints", report.AllConstraints)
	writeTagged(&b, "Assumptions", report.AllAssumptions)
	writeGaps(&b, report.Gaps)
	writeConflicts(&b, report.Conflicts)

	if len(report.CriticalQuestions) > 0 {
		b.WriteString("## Critical Questions\n\n")
		for _, q := range report.CriticalQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeRequirements(b *strings.Builder, extractions []document.ExtractedContent) {
	var lines []string
	for _, e := range extractions {
		for _, r := range e.Requirements {
			line := r.Description
			if r.Priority != "" {
				line = fmt.Sprintf("%s (priority: %s)", line, r.Priority)
			}
			lines = append(lines, fmt.Sprintf("%s (from %s)", line, e.Filename))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Requirements\n\n")
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

func writeFeatures(b *strings.Builder, extractions []document.ExtractedContent) {
	var lines []string
	for _, e := range extractions {
		for _, f := range e.Features {
			line := f.Name
			if f.Description != "" {
				line = fmt.Sprintf("%s: %s", f.Name, f.Description)
			}
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Features\n\n")
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
	b.WriteString("\n")
}

func writeTechnicalContext(b *strings.Builder, report analyze.Report) {
	if len(report.CommonTechnologies) == 0 && len(report.CommonStakeholders) == 0 {
		return
	}
	b.WriteString("## Technical Context\n\n")
	if len(report.CommonTechnologies) > 0 {
		fmt.Fprintf(b, "Technologies referenced across documents: %s\n\n", strings.Join(report.CommonTechnologies, ", "))
	}
	if len(report.CommonStakeholders) > 0 {
		fmt.Fprintf(b, "Stakeholders referenced across documents: %s\n\n", strings.Join(report.CommonStakeholders, ", "))
	}
}

func writeTagged(b *strings.Builder, heading string, items []analyze.TaggedItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s (from %s)\n", item.Text, item.Source)
	}
	b.WriteString("\n")
}

func writeGaps(b *strings.Builder, gaps analyze.GapAnalysis) {
	if len(gaps.MissingDocumentTypes) == 0 && len(gaps.LowCoverageAreas) == 0 {
		return
	}
	b.WriteString("## Gaps\n\n")
	for _, t := range gaps.MissingDocumentTypes {
		fmt.Fprintf(b, "- Missing document type: %s\n", t)
	}
	for _, area := range gaps.LowCoverageAreas {
		fmt.Fprintf(b, "- [%s] %s: %s\n", area.Severity, area.Area, area.Impact)
	}
	if len(gaps.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n\n")
		for _, rec := range gaps.Recommendations {
			fmt.Fprintf(b, "- %s\n", rec)
		}
	}
	b.WriteString("\n")
}

func writeConflicts(b *strings.Builder, conflicts analyze.ConflictAnalysis) {
	all := append(append([]analyze.Conflict{}, conflicts.Conflicts...), conflicts.Inconsistencies...)
	if len(all) == 0 {
		return
	}
	b.WriteString("## Conflicts\n\n")
	for _, c := range all {
		fmt.Fprintf(b, "- [%s] %s (%s)\n", c.Severity, c.Description, strings.Join(c.AffectedDocuments, ", "))
	}
	b.WriteString("\n")
}
