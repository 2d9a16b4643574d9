package reflection

import (
	"strings"

	"github.com/planloom/planloom/internal/llm"
)

// firstDraftGuidance is the sentinel instruction used on iteration 1, when
// there is no prior critique to act on.
const firstDraftGuidance = "No prior guidance. Produce the strongest possible first draft."

func draftPrompt(s *State) string {
	guidance := strings.TrimSpace(s.RevisionInstructions)
	if guidance == "" {
		guidance = firstDraftGuidance
	}

	var b strings.Builder
	b.WriteString("You are a senior delivery lead writing an executive-grade implementation plan.\n")
	b.WriteString("Write a complete plan in markdown: phases, milestones, workstreams, resourcing, risks with mitigations, and acceptance criteria.\n")
	b.WriteString("Ground every claim in the planning context below; flag open questions rather than inventing facts.\n\n")
	b.WriteString("Task:\n")
	b.WriteString(llm.EscapeBraces(s.Task))
	b.WriteString("\n\nRevision guidance:\n")
	b.WriteString(llm.EscapeBraces(guidance))
	if s.FeasibilityNote != "" {
		b.WriteString("\n\nFeasibility assessment:\n")
		b.WriteString(llm.EscapeBraces(s.FeasibilityNote))
	}
	b.WriteString("\n\nPlanning context:\n")
	b.WriteString(llm.EscapeBraces(s.DocumentContext))
	b.WriteString("\n")
	return b.String()
}

func reflectPrompt(s *State, draft string) string {
	var b strings.Builder
	b.WriteString("You are a skeptical plan reviewer. Critique the draft implementation plan below.\n")
	b.WriteString("Evaluate completeness against the planning context, internal consistency, feasibility, sequencing, and risk coverage.\n")
	b.WriteString("Be specific: list concrete weaknesses and what is missing. Do not rewrite the plan.\n\n")
	b.WriteString("Task:\n")
	b.WriteString(llm.EscapeBraces(s.Task))
	b.WriteString("\n\nPlanning context:\n")
	b.WriteString(llm.EscapeBraces(s.DocumentContext))
	b.WriteString("\n\nDraft plan:\n")
	b.WriteString(llm.EscapeBraces(draft))
	b.WriteString("\n")
	return b.String()
}

func revisePrompt(s *State, draft, critique string) string {
	var b strings.Builder
	b.WriteString("You are the final arbiter of an implementation plan. Given the draft and its critique, decide whether the plan is ready.\n")
	b.WriteString("Respond with only a JSON object:\n")
	b.WriteString(`{"decision": "accept" or "revise", "rationale": "<why>", "required_actions": "<what the next draft must change; empty if accepting>"}`)
	b.WriteString("\n\nTask:\n")
	b.WriteString(llm.EscapeBraces(s.Task))
	b.WriteString("\n\nDraft plan:\n")
	b.WriteString(llm.EscapeBraces(draft))
	b.WriteString("\n\nCritique:\n")
	b.WriteString(llm.EscapeBraces(critique))
	b.WriteString("\n")
	return b.String()
}
