package analyze

import (
	"fmt"

	"github.com/planloom/planloom/internal/document"
)

// GapAnalysis describes what the document set is missing.
type GapAnalysis struct {
	MissingDocumentTypes []document.Type `json:"missing_document_types,omitempty"`
	MissingCriticalInfo  []string        `json:"missing_critical_info,omitempty"`
	LowCoverageAreas     []CoverageArea  `json:"low_coverage_areas,omitempty"`
	Recommendations      []string        `json:"recommendations,omitempty"`
}

// CoverageArea flags one weakly covered information area.
type CoverageArea struct {
	Area     string   `json:"area"`
	Severity Severity `json:"severity"`
	Impact   string   `json:"impact"`
}

// criticalCategory is one critical-information check over the aggregated
// extraction fields.
type criticalCategory struct {
	name     string
	severity Severity
	impact   string
	present  func([]document.ExtractedContent) bool
}

// CriticalCategories is the fixed checklist of information a planning
// context needs. Order is the reporting order.
var criticalCategories = []criticalCategory{
	{
		name:     "functional_requirements",
		severity: SeverityHigh,
		impact:   "Without functional requirements the plan cannot commit to concrete deliverables.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool {
				return len(e.Requirements) > 0 || len(e.Features) > 0
			})
		},
	},
	{
		name:     "technical_architecture",
		severity: SeverityHigh,
		impact:   "Without architecture or technology information, effort and sequencing estimates are guesses.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool {
				return len(e.Technologies) > 0 || len(e.Systems) > 0
			})
		},
	},
	{
		name:     "testing_strategy",
		severity: SeverityMedium,
		impact:   "Without a testing strategy the plan cannot schedule verification work.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool {
				return len(e.TestCases) > 0 || e.DocumentType == document.TypeTestPlan
			})
		},
	},
	{
		name:     "user_workflows",
		severity: SeverityMedium,
		impact:   "Without user workflows the plan may miss user-facing milestones.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool {
				return len(e.UseCases) > 0 || e.DocumentType == document.TypeUseCase || e.DocumentType == document.TypeUserManual
			})
		},
	},
	{
		name:     "risk_assessment",
		severity: SeverityMedium,
		impact:   "Without identified risks the plan has no mitigation or contingency work.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool { return len(e.Risks) > 0 })
		},
	},
	{
		name:     "project_scope",
		severity: SeverityLow,
		impact:   "Without scope boundaries the plan risks uncontrolled growth.",
		present: func(ex []document.ExtractedContent) bool {
			return anyExtraction(ex, func(e document.ExtractedContent) bool {
				return len(e.Constraints) > 0 || len(e.Assumptions) > 0 ||
					e.DocumentType == document.TypeBusinessRequirements ||
					e.DocumentType == document.TypeStatementOfWork
			})
		},
	},
}

// CriticalCategoryCount is the size of the critical-information checklist,
// used by the coverage formula.
const CriticalCategoryCount = 6

func anyExtraction(ex []document.ExtractedContent, pred func(document.ExtractedContent) bool) bool {
	for _, e := range ex {
		if pred(e) {
			return true
		}
	}
	return false
}

// analyzeGaps runs the critical-information checklist and generates
// deterministic recommendations by rule lookup. No LLM involved.
func analyzeGaps(missingTypes []document.Type, extractions []document.ExtractedContent) GapAnalysis {
	gaps := GapAnalysis{MissingDocumentTypes: missingTypes}

	for _, cat := range criticalCategories {
		if cat.present(extractions) {
			continue
		}
		gaps.MissingCriticalInfo = append(gaps.MissingCriticalInfo, cat.name)
		gaps.LowCoverageAreas = append(gaps.LowCoverageAreas, CoverageArea{
			Area:     cat.name,
			Severity: cat.severity,
			Impact:   cat.impact,
		})
	}

	gaps.Recommendations = recommendations(missingTypes, gaps.MissingCriticalInfo)
	return gaps
}

var typeRecommendations = map[document.Type]string{
	document.TypeFunctionalSpecification: "Provide a functional specification describing expected system behavior.",
	document.TypeTechnicalSpecification:  "Provide a technical specification covering architecture and technology choices.",
	document.TypeRequirementsDocument:    "Provide a requirements document with prioritized, identifiable requirements.",
	document.TypeTestPlan:                "Provide a test plan so verification work can be scheduled.",
	document.TypeUseCase:                 "Provide use case documentation covering the main user workflows.",
}

var categoryRecommendations = map[string]string{
	"functional_requirements": "Document concrete functional requirements or features before planning.",
	"technical_architecture":  "Document the intended technology stack and system architecture.",
	"testing_strategy":        "Define a testing strategy with representative test cases.",
	"user_workflows":          "Describe the primary user workflows end to end.",
	"risk_assessment":         "List known project risks and their likely impact.",
	"project_scope":           "State scope boundaries, assumptions, and constraints explicitly.",
}

func recommendations(missingTypes []document.Type, missingInfo []string) []string {
	var out []string
	for _, t := range missingTypes {
		if rec, ok := typeRecommendations[t]; ok {
			out = append(out, rec)
		} else {
			out = append(out, fmt.Sprintf("Provide a %s document.", t))
		}
	}
	for _, cat := range missingInfo {
		if rec, ok := categoryRecommendations[cat]; ok {
			out = append(out, rec)
		}
	}
	return out
}
