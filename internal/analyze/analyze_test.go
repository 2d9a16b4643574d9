package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planloom/planloom/internal/document"
)

func classificationOf(filename string, t document.Type, confidence float64) document.Classification {
	return document.Classification{
		Filename:     filename,
		Filepath:     "/docs/" + filename,
		DocumentType: t,
		Confidence:   confidence,
	}
}

func TestAnalyze_MissingDocumentTypes(t *testing.T) {
	t.Parallel()

	classifications := []document.Classification{
		classificationOf("reqs.pdf", document.TypeRequirementsDocument, 0.9),
		classificationOf("tech.pdf", document.TypeTechnicalSpecification, 0.85),
	}
	extractions := []document.ExtractedContent{
		{Filename: "reqs.pdf", DocumentType: document.TypeRequirementsDocument, ExtractionConfidence: 0.8},
		{Filename: "tech.pdf", DocumentType: document.TypeTechnicalSpecification, ExtractionConfidence: 0.8},
	}

	report := Analyzer{}.Analyze(classifications, extractions)

	assert.Contains(t, report.DocumentTypesMissing, document.TypeTestPlan)
	assert.Contains(t, report.DocumentTypesMissing, document.TypeUseCase)
	assert.Less(t, report.CoverageScore, 1.0)
	assert.Equal(t, 2, report.TotalDocuments)
}

func TestAnalyze_TechnologyConflict(t *testing.T) {
	t.Parallel()

	classifications := []document.Classification{
		classificationOf("frontend.pdf", document.TypeTechnicalSpecification, 0.9),
		classificationOf("arch.pdf", document.TypeArchitectureDocument, 0.9),
	}
	extractions := []document.ExtractedContent{
		{Filename: "frontend.pdf", DocumentType: document.TypeTechnicalSpecification, Technologies: []string{"React"}},
		{Filename: "arch.pdf", DocumentType: document.TypeArchitectureDocument, Technologies: []string{"Angular"}},
	}

	report := Analyzer{}.Analyze(classifications, extractions)

	require.Len(t, report.Conflicts.Conflicts, 1)
	conflict := report.Conflicts.Conflicts[0]
	assert.Equal(t, ConflictTechnology, conflict.Type)
	assert.Equal(t, SeverityHigh, conflict.Severity)
	assert.ElementsMatch(t, []string{"frontend.pdf", "arch.pdf"}, conflict.AffectedDocuments)
	assert.Equal(t, 1, report.Conflicts.SeverityHigh)
}

func TestAnalyze_RequirementPriorityConflict(t *testing.T) {
	t.Parallel()

	extractions := []document.ExtractedContent{
		{
			Filename: "a.pdf",
			Requirements: []document.Requirement{
				{Description: "The system shall support single sign on for all users", Priority: "high"},
			},
		},
		{
			Filename: "b.pdf",
			Requirements: []document.Requirement{
				{Description: "The system shall support single sign on for users", Priority: "low"},
			},
		},
	}

	report := Analyzer{}.Analyze(nil, extractions)

	require.Len(t, report.Conflicts.Inconsistencies, 1)
	inc := report.Conflicts.Inconsistencies[0]
	assert.Equal(t, ConflictRequirementPriority, inc.Type)
	assert.Equal(t, SeverityMedium, inc.Severity)
	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf"}, inc.AffectedDocuments)
	assert.Equal(t, 1, report.Conflicts.SeverityMedium)
}

func TestAnalyze_NoPriorityConflictSameSource(t *testing.T) {
	t.Parallel()

	extractions := []document.ExtractedContent{
		{
			Filename: "a.pdf",
			Requirements: []document.Requirement{
				{Description: "Support single sign on for all users", Priority: "high"},
				{Description: "Support single sign on for all users", Priority: "low"},
			},
		},
	}

	report := Analyzer{}.Analyze(nil, extractions)
	assert.Empty(t, report.Conflicts.Inconsistencies)
}

func TestAnalyze_OverlapThresholdTunable(t *testing.T) {
	t.Parallel()

	extractions := []document.ExtractedContent{
		{Filename: "a.pdf", Requirements: []document.Requirement{{Description: "export reports as pdf files", Priority: "high"}}},
		{Filename: "b.pdf", Requirements: []document.Requirement{{Description: "export reports weekly", Priority: "low"}}},
	}

	// Overlap is 2/5 = 0.4: below the default, above a lowered threshold.
	strict := Analyzer{}.Analyze(nil, extractions)
	assert.Empty(t, strict.Conflicts.Inconsistencies)

	loose := Analyzer{OverlapThreshold: 0.3}.Analyze(nil, extractions)
	assert.Len(t, loose.Conflicts.Inconsistencies, 1)
}

func TestReadinessThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		coverage     float64
		severityHigh int
		want         Readiness
	}{
		{"high coverage no conflicts", 0.85, 0, ReadinessHigh},
		{"high coverage with conflict", 0.85, 1, ReadinessMedium},
		{"medium coverage", 0.6, 0, ReadinessMedium},
		{"medium coverage too many conflicts", 0.6, 2, ReadinessLow},
		{"low coverage", 0.4, 0, ReadinessLow},
		{"boundary high", 0.8, 0, ReadinessHigh},
		{"boundary medium", 0.5, 1, ReadinessMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readiness(tt.coverage, tt.severityHigh))
		})
	}
}

func TestCoverageScore_AllPresent(t *testing.T) {
	t.Parallel()

	var classifications []document.Classification
	var extractions []document.ExtractedContent
	for _, typ := range ExpectedTypes {
		name := string(typ) + ".pdf"
		classifications = append(classifications, classificationOf(name, typ, 1.0))
		extractions = append(extractions, document.ExtractedContent{
			Filename:             name,
			DocumentType:         typ,
			Requirements:         []document.Requirement{{Description: "requirement text"}},
			Technologies:         []string{"Go"},
			TestCases:            []document.TestCase{{Description: "case"}},
			UseCases:             []document.UseCase{{Name: "flow"}},
			Risks:                []string{"risk"},
			Constraints:          []string{"constraint"},
			ExtractionConfidence: 1.0,
		})
	}

	report := Analyzer{}.Analyze(classifications, extractions)

	assert.Empty(t, report.DocumentTypesMissing)
	assert.Empty(t, report.Gaps.MissingCriticalInfo)
	assert.InDelta(t, 1.0, report.CoverageScore, 1e-9)
	assert.Equal(t, ReadinessHigh, report.Readiness)
}

func TestConfidenceScore_ConflictPenaltyCapped(t *testing.T) {
	t.Parallel()

	conflicts := ConflictAnalysis{SeverityHigh: 10, SeverityMedium: 10}
	score := confidenceScore(1.0, nil, nil, conflicts)

	// 0.4·1 + 0.2·0 + 0.2·0 + 0.2·(1-0.3)
	assert.InDelta(t, 0.54, score, 1e-9)
}

func TestAnalyze_Idempotent(t *testing.T) {
	t.Parallel()

	classifications := []document.Classification{
		classificationOf("a.pdf", document.TypeRequirementsDocument, 0.7),
		classificationOf("b.pdf", document.TypeTestPlan, 0.6),
	}
	extractions := []document.ExtractedContent{
		{Filename: "a.pdf", Requirements: []document.Requirement{{Description: "do the thing", Priority: "high"}}, Technologies: []string{"PostgreSQL"}, ExtractionConfidence: 0.7},
		{Filename: "b.pdf", Technologies: []string{"MySQL", "PostgreSQL"}, ExtractionConfidence: 0.5},
	}

	first := Analyzer{}.Analyze(classifications, extractions)
	second := Analyzer{}.Analyze(classifications, extractions)

	assert.Equal(t, first.CoverageScore, second.CoverageScore)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.Readiness, second.Readiness)
	assert.Equal(t, first.Conflicts.SeverityHigh, second.Conflicts.SeverityHigh)
}

func TestCommonTechnologiesAndConsolidation(t *testing.T) {
	t.Parallel()

	extractions := []document.ExtractedContent{
		{Filename: "a.pdf", Technologies: []string{"Go", "Redis"}, Stakeholders: []string{"Product"}, Risks: []string{"schedule slip"}},
		{Filename: "b.pdf", Technologies: []string{"go"}, Stakeholders: []string{"Product", "Legal"}, Risks: []string{"vendor lock-in"}},
	}

	report := Analyzer{}.Analyze(nil, extractions)

	assert.Equal(t, []string{"Go"}, report.CommonTechnologies)
	assert.Equal(t, []string{"Product"}, report.CommonStakeholders)

	require.Len(t, report.AllRisks, 2)
	assert.Equal(t, "a.pdf", report.AllRisks[0].Source)
	assert.Equal(t, "b.pdf", report.AllRisks[1].Source)
}

func TestTally_UnknownSeverityBucketsLow(t *testing.T) {
	t.Parallel()

	ca := ConflictAnalysis{
		Conflicts: []Conflict{
			{Type: ConflictTechnology, Severity: SeverityHigh},
			{Type: ConflictTechnology, Severity: Severity("catastrophic")},
		},
	}
	tally(&ca)

	assert.Equal(t, 1, ca.SeverityHigh)
	assert.Equal(t, 0, ca.SeverityMedium)
	assert.Equal(t, 1, ca.SeverityLow)
}

func TestCriticalQuestions_Deterministic(t *testing.T) {
	t.Parallel()

	classifications := []document.Classification{
		classificationOf("uc.pdf", document.TypeUseCase, 0.9),
	}
	extractions := []document.ExtractedContent{
		{Filename: "uc.pdf", DocumentType: document.TypeUseCase, UseCases: []document.UseCase{{Name: "login"}}},
	}

	report := Analyzer{}.Analyze(classifications, extractions)

	assert.Contains(t, report.CriticalQuestions, "What is the intended technology stack and system architecture?")
	assert.Contains(t, report.CriticalQuestions, "Can detailed, prioritized requirements be provided?")
}

func TestWordOverlap(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, wordOverlap("alpha beta", "beta alpha"), 1e-9)
	assert.InDelta(t, 0.5, wordOverlap("alpha beta gamma delta", "alpha beta"), 1e-9)
	assert.InDelta(t, 0.0, wordOverlap("", ""), 1e-9)
	// Punctuation is stripped before comparison.
	assert.InDelta(t, 1.0, wordOverlap("users, login.", "users login"), 1e-9)
}

func TestAnalyze_SurfacesLowTrustClassifications(t *testing.T) {
	t.Parallel()

	shaky := classificationOf("scan.pdf", document.TypeUnknown, 0.1)
	shaky.LowTrust = true
	classifications := []document.Classification{
		classificationOf("reqs.pdf", document.TypeRequirementsDocument, 0.9),
		shaky,
	}

	report := Analyzer{}.Analyze(classifications, nil)
	assert.Equal(t, []string{"scan.pdf"}, report.LowTrustDocuments)
}
