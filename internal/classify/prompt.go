package classify

import (
	"strings"

	"github.com/planloom/planloom/internal/document"
	"github.com/planloom/planloom/internal/llm"
)

func buildPrompt(sample, filename string) string {
	var b strings.Builder
	b.WriteString("You are a document classifier for software project documentation.\n")
	b.WriteString("Classify the document below into exactly one of these types:\n")
	for _, t := range document.AllTypes {
		b.WriteString("- ")
		b.WriteString(string(t))
		b.WriteString("\n")
	}
	b.WriteString("\nRespond with only a JSON object of this shape:\n")
	b.WriteString(`{"document_type": "<type>", "confidence": 0.0, "secondary_types": [{"type": "<type>", "confidence": 0.0}], "key_indicators": ["<phrase or structural cue>"]}`)
	b.WriteString("\n\nFilename: ")
	b.WriteString(llm.EscapeBraces(filename))
	b.WriteString("\n\nDocument sample:\n---\n")
	b.WriteString(llm.EscapeBraces(sample))
	b.WriteString("\n---\n")
	return b.String()
}
