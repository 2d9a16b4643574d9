package extract

import (
	"strings"

	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/llm"
)

// focusGuidance maps a document type to extraction focus instructions that
// are merged with the universal schema request.
var focusGuidance = map[document.Type]string{
	document.TypeFunctionalSpecification: "Focus on functional requirements, features, user-facing behavior, and explicit acceptance criteria.",
	document.TypeTechnicalSpecification:  "Focus on architecture decisions, technologies, system interfaces, data models, and technical constraints.",
	document.TypeRequirementsDocument:    "Focus on enumerated requirements with priorities, categories, and identifiers.",
	document.TypeTestPlan:                "Focus on test cases, test strategy, coverage targets, and expected results.",
	document.TypeUseCase:                 "Focus on use cases with actors, preconditions, flows, and outcomes.",
	document.TypeArchitectureDocument:    "Focus on components, system boundaries, technologies, and integration points.",
	document.TypeSecurityDocument:        "Focus on security requirements, threat considerations, and compliance constraints.",
	document.TypeDeploymentGuide:         "Focus on deployment steps, environments, infrastructure dependencies, and operational constraints.",
	document.TypeUserManual:              "Focus on user workflows, features as experienced by end users, and terminology.",
	document.TypeAPIDocumentation:        "Focus on exposed operations, data contracts, systems, and integration dependencies.",
	document.TypeBusinessRequirements:    "Focus on business goals, stakeholders, success criteria, and high-level requirements.",
	document.TypeDesignDocument:          "Focus on design decisions, alternatives considered, and affected components.",
	document.TypeStatementOfWork:         "Focus on deliverables, milestones, stakeholders, assumptions, and constraints.",
	document.TypeUnknown:                 "Extract whatever structured project information is present; be conservative with confidence.",
}

const schemaRequest = `Respond with only a JSON object of this shape:
{
  "title": "", "summary": "",
  "key_sections": [{"title": "", "content": ""}],
  "requirements": [{"id": "", "description": "", "priority": "high|medium|low", "category": ""}],
  "features": [{"name": "", "description": ""}],
  "test_cases": [{"id": "", "description": "", "expected": ""}],
  "use_cases": [{"name": "", "actor": "", "description": ""}],
  "risks": [""], "assumptions": [""], "dependencies": [""], "constraints": [""],
  "technologies": [""], "stakeholders": [""], "systems": [""], "keywords": [""],
  "extraction_confidence": 0.0
}
Omit list entries you cannot support with document text. extraction_confidence is your own confidence in [0,1].`

func buildPrompt(text string, docType document.Type, filename string) string {
	guidance, ok := focusGuidance[docType]
	if !ok {
		guidance = focusGuidance[document.TypeUnknown]
	}

	var b strings.Builder
	b.WriteString("You are extracting structured planning information from a project document.\n")
	b.WriteString("Document type: ")
	b.WriteString(string(docType))
	b.WriteString("\n")
	b.WriteString(guidance)
	b.WriteString("\n\n")
	b.WriteString(schemaRequest)
	b.WriteString("\n\nFilename: ")
	b.WriteString(llm.EscapeBraces(filename))
	b.WriteString("\n\nDocument text:\n---\n")
	b.WriteString(llm.EscapeBraces(text))
	b.WriteString("\n---\n")
	return b.String()
}
