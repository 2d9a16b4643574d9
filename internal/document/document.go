// Package document defines the shared data model for classified and
// extracted project documents.
package document

// Type identifies the kind of a project document.
type Type string

// Known document types. Unknown is the fallback when classification cannot
// produce a confident answer.
const (
	TypeFunctionalSpecification Type = "functional_specification"
	TypeTechnicalSpecification  Type = "technical_specification"
	TypeRequirementsDocument    Type = "requirements_document"
	TypeTestPlan                Type = "test_plan"
	TypeUseCase                 Type = "use_case"
	TypeArchitectureDocument    Type = "architecture_document"
	TypeSecurityDocument        Type = "security_document"
	TypeDeploymentGuide         Type = "deployment_guide"
	TypeUserManual              Type = "user_manual"
	TypeAPIDocumentation        Type = "api_documentation"
	TypeBusinessRequirements    Type = "business_requirements"
	TypeDesignDocument          Type = "design_document"
	TypeStatementOfWork         Type = "statement_of_work"
	TypeUnknown                 Type = "unknown"
)

// AllTypes lists every member of the classification taxonomy.
var AllTypes = []Type{
	TypeFunctionalSpecification,
	TypeTechnicalSpecification,
	TypeRequirementsDocument,
	TypeTestPlan,
	TypeUseCase,
	TypeArchitectureDocument,
	TypeSecurityDocument,
	TypeDeploymentGuide,
	TypeUserManual,
	TypeAPIDocumentation,
	TypeBusinessRequirements,
	TypeDesignDocument,
	TypeStatementOfWork,
	TypeUnknown,
}

// ParseType maps a raw string to a known Type, falling back to TypeUnknown.
func ParseType(raw string) Type {
	for _, t := range AllTypes {
		if string(t) == raw {
			return t
		}
	}
	return TypeUnknown
}

// SecondaryType is an alternative classification with its confidence.
type SecondaryType struct {
	Type       Type    `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Classification is the classifier's verdict for a single document.
// It is created once per document and never mutated afterwards.
type Classification struct {
	Filename        string          `json:"filename"`
	Filepath        string          `json:"filepath"`
	DocumentType    Type            `json:"document_type"`
	Confidence      float64         `json:"confidence"`
	SecondaryTypes  []SecondaryType `json:"secondary_types,omitempty"`
	KeyIndicators   []string        `json:"key_indicators,omitempty"`
	PageCount       int             `json:"page_count"`
	ExtractedSample string          `json:"extracted_sample,omitempty"`

	// LowTrust marks a classification whose confidence fell below the
	// configured threshold. The reported type is preserved either way.
	LowTrust bool `json:"low_trust,omitempty"`
}

// Section is a titled slice of document content.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Requirement is a single extracted requirement record.
type Requirement struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Feature is a single extracted feature record.
type Feature struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TestCase is a single extracted test case record.
type TestCase struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Expected    string `json:"expected,omitempty"`
}

// UseCase is a single extracted use case record.
type UseCase struct {
	Name        string `json:"name"`
	Actor       string `json:"actor,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExtractedContent is the structured content pulled out of one document.
// Like Classification it is write-once: the extractor builds it fully and
// the rest of the pipeline only reads it.
type ExtractedContent struct {
	Filename             string        `json:"filename"`
	DocumentType         Type          `json:"document_type"`
	Title                string        `json:"title,omitempty"`
	Summary              string        `json:"summary,omitempty"`
	KeySections          []Section     `json:"key_sections,omitempty"`
	Requirements         []Requirement `json:"requirements,omitempty"`
	Features             []Feature     `json:"features,omitempty"`
	TestCases            []TestCase    `json:"test_cases,omitempty"`
	UseCases             []UseCase     `json:"use_cases,omitempty"`
	Risks                []string      `json:"risks,omitempty"`
	Assumptions          []string      `json:"assumptions,omitempty"`
	Dependencies         []string      `json:"dependencies,omitempty"`
	Constraints          []string      `json:"constraints,omitempty"`
	Technologies         []string      `json:"technologies,omitempty"`
	Stakeholders         []string      `json:"stakeholders,omitempty"`
	Systems              []string      `json:"systems,omitempty"`
	Keywords             []string      `json:"keywords,omitempty"`
	ExtractionConfidence float64       `json:"extraction_confidence"`
	ExtractionNotes      []string      `json:"extraction_notes,omitempty"`
}
