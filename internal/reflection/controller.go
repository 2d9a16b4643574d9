package reflection

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/llm"
)

// Outcome is the result of one revise step.
type Outcome string

// Revise outcomes. Accept and ForcedAccept are terminal; ReviseAgain loops
// back to draft.
const (
	OutcomeAccept       Outcome = "accept"
	OutcomeForcedAccept Outcome = "forced_accept"
	OutcomeReviseAgain  Outcome = "revise_again"
)

// Controller drives the draft-reflect-revise cycle for one state.
// A single request is strictly sequential; distinct requests each own their
// State and need no locking.
type Controller struct {
	gen llm.Generator
}

// NewController constructs a Controller around a Generator.
func NewController(gen llm.Generator) *Controller {
	return &Controller{gen: gen}
}

// Run cycles the state machine until a terminal outcome. On success the
// state's FinalPlan is set. On error the state is still returned as-is so
// callers can surface the iteration count and last good draft.
func (c *Controller) Run(ctx context.Context, s *State) (Outcome, error) {
	for {
		if err := c.Draft(ctx, s); err != nil {
			return "", err
		}
		if err := c.Reflect(ctx, s); err != nil {
			return "", err
		}
		outcome, err := c.Revise(ctx, s)
		if err != nil {
			return "", err
		}
		if outcome != OutcomeReviseAgain {
			return outcome, nil
		}
	}
}

// Draft produces a new candidate plan and starts a new iteration. It has no
// precondition; on iteration 1 the revision guidance falls back to the
// first-draft sentinel.
func (c *Controller) Draft(ctx context.Context, s *State) error {
	iteration := len(s.Iterations) + 1
	log.Info().Int("iteration", iteration).Int("max_iterations", s.MaxIterations).Msg("drafting plan")

	draft, err := c.gen.Generate(ctx, draftPrompt(s))
	if err != nil {
		return fmt.Errorf("draft iteration %d: %w", iteration, err)
	}

	s.appendIteration(draft, "")
	return nil
}

// Reflect critiques the newest draft. Requires an existing draft.
func (c *Controller) Reflect(ctx context.Context, s *State) error {
	current, ok := s.Current()
	if !ok || current.Draft == "" {
		return fmt.Errorf("%w: cannot reflect without an existing draft", ErrPrecondition)
	}

	log.Info().Int("iteration", len(s.Iterations)).Msg("critiquing draft")
	critique, err := c.gen.Generate(ctx, reflectPrompt(s, current.Draft))
	if err != nil {
		return fmt.Errorf("reflect iteration %d: %w", len(s.Iterations), err)
	}

	return s.replaceCurrent(func(it Iteration) Iteration {
		it.Critique = critique
		return it
	})
}

// Revise judges the newest draft against its critique and advances the
// state machine: accept, forced-accept at the iteration cap, or loop back
// with revision instructions. The cap counts drafts, including the one
// being judged, so the loop can never exceed MaxIterations drafts.
func (c *Controller) Revise(ctx context.Context, s *State) (Outcome, error) {
	current, ok := s.Current()
	if !ok || current.Draft == "" {
		return "", fmt.Errorf("%w: cannot revise without an existing draft", ErrPrecondition)
	}

	raw, err := c.gen.Generate(ctx, revisePrompt(s, current.Draft, current.Critique))
	if err != nil {
		return "", fmt.Errorf("revise iteration %d: %w", len(s.Iterations), err)
	}

	decision, err := parseDecision(raw, len(s.Iterations), current.Draft)
	if err != nil {
		return "", err
	}

	accepted := decision.Decision == DecisionAccept
	if err := s.replaceCurrent(func(it Iteration) Iteration {
		it.Accepted = accepted
		if decision.Rationale != "" {
			it.Reasoning = appendReasoning(it.Reasoning, decision.Rationale)
		}
		return it
	}); err != nil {
		return "", err
	}
	s.DecisionRationale = decision.Rationale

	if accepted {
		s.FinalPlan = current.Draft
		s.RevisionInstructions = ""
		log.Info().Int("iterations", len(s.Iterations)).Msg("plan accepted")
		return OutcomeAccept, nil
	}

	if len(s.Iterations) >= s.MaxIterations {
		// Hard cap: override the verdict and accept the current draft.
		_ = s.replaceCurrent(func(it Iteration) Iteration {
			it.Accepted = true
			it.Reasoning = appendReasoning(it.Reasoning, "iteration cap reached")
			return it
		})
		s.FinalPlan = current.Draft
		s.RevisionInstructions = ""
		s.DecisionRationale = appendReasoning(decision.Rationale, "iteration cap reached")
		log.Warn().Int("iterations", len(s.Iterations)).Msg("iteration cap reached, forcing accept")
		return OutcomeForcedAccept, nil
	}

	s.RevisionInstructions = decision.RequiredActions
	log.Info().
		Int("iteration", len(s.Iterations)).
		Str("rationale", truncate(decision.Rationale, 120)).
		Msg("revision requested")
	return OutcomeReviseAgain, nil
}

func appendReasoning(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "\n" + addition
}
