package reflection

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/planloom/planloom/internal/llm"
)

// Decision is the structured accept/revise verdict the revise node asks
// the model for.
type Decision struct {
	Decision        string `json:"decision"`
	Rationale       string `json:"rationale"`
	RequiredActions string `json:"required_actions,omitempty"`
}

// Decision values.
const (
	DecisionAccept = "accept"
	DecisionRevise = "revise"
)

const decisionSchema = `{
  "type": "object",
  "properties": {
    "decision": {"type": "string", "enum": ["accept", "revise"]},
    "rationale": {"type": "string"},
    "required_actions": {"type": "string"}
  },
  "required": ["decision"]
}`

// DecisionParseError is the fatal failure mode of the revise node. An
// unparseable decision cannot safely drive the state machine, so instead of
// silently defaulting it carries the full diagnostic plus enough loop state
// for the caller to surface partial progress.
type DecisionParseError struct {
	RawPayload     string
	Extracted      string
	Reason         string
	IterationsDone int
	LastDraft      string
}

// Error implements error.
func (e *DecisionParseError) Error() string {
	return fmt.Sprintf("parse revise decision after %d iteration(s): %s (raw payload: %s)",
		e.IterationsDone, e.Reason, truncate(e.RawPayload, 200))
}

// parseDecision applies lenient JSON extraction, schema validation, and
// strict parsing. Any failure is fatal for the cycle.
func parseDecision(raw string, iterationsDone int, lastDraft string) (Decision, error) {
	fail := func(extracted, reason string) (Decision, error) {
		return Decision{}, &DecisionParseError{
			RawPayload:     raw,
			Extracted:      extracted,
			Reason:         reason,
			IterationsDone: iterationsDone,
			LastDraft:      lastDraft,
		}
	}

	payload, ok := llm.ExtractJSON([]byte(raw))
	if !ok {
		return fail("", "no JSON object found in response")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(decisionSchema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return fail(string(payload), "schema validation error: "+err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, schemaErr := range result.Errors() {
			msgs = append(msgs, schemaErr.String())
		}
		return fail(string(payload), "decision does not match schema: "+strings.Join(msgs, "; "))
	}

	var d Decision
	if err := json.Unmarshal(payload, &d); err != nil {
		return fail(string(payload), "JSON error: "+err.Error())
	}
	return d, nil
}

// truncate caps s at n bytes, backing off to a rune boundary so the
// result is always valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
