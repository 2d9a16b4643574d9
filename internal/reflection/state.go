// Package reflection implements the draft-reflect-revise loop that
// converges on an accepted implementation plan under an iteration budget.
package reflection

import (
	"errors"
	"fmt"
	"time"
)

// ErrPrecondition indicates a node was invoked before its structural
// precondition held. This is a caller bug, not a transient failure.
var ErrPrecondition = errors.New("reflection precondition violated")

// Iteration is one loop cycle. Only the newest iteration may have its
// critique, reasoning, or accepted fields set, and only while it is the
// newest entry.
type Iteration struct {
	Draft     string    `json:"draft"`
	Critique  string    `json:"critique,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// State carries everything the loop needs, threaded through the nodes for
// the lifetime of one plan-generation request. Iterations is append-only;
// its length is the loop's iteration counter.
type State struct {
	Task            string
	DocumentContext string
	FeasibilityNote string
	MaxIterations   int

	Iterations           []Iteration
	RevisionInstructions string
	DecisionRationale    string
	FinalPlan            string
}

// NewState creates the initial loop state. maxIterations below 1 is raised
// to 1.
func NewState(task, documentContext, feasibilityNote string, maxIterations int) *State {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &State{
		Task:            task,
		DocumentContext: documentContext,
		FeasibilityNote: feasibilityNote,
		MaxIterations:   maxIterations,
	}
}

// Current returns the newest iteration, or false when none exists.
func (s *State) Current() (Iteration, bool) {
	if len(s.Iterations) == 0 {
		return Iteration{}, false
	}
	return s.Iterations[len(s.Iterations)-1], true
}

// Terminal reports whether the loop has reached accept or forced-accept.
func (s *State) Terminal() bool {
	return s.FinalPlan != ""
}

// appendIteration starts a new cycle with a fresh draft.
func (s *State) appendIteration(draft, reasoning string) {
	s.Iterations = append(s.Iterations, Iteration{
		Draft:     draft,
		Reasoning: reasoning,
		CreatedAt: time.Now().UTC(),
	})
	s.RevisionInstructions = ""
	s.DecisionRationale = ""
}

// replaceCurrent writes an updated copy of the newest iteration back at
// len-1. Copy-then-replace keeps the list append-only and avoids aliasing
// a record something else may be reading.
func (s *State) replaceCurrent(mutate func(Iteration) Iteration) error {
	if len(s.Iterations) == 0 {
		return fmt.Errorf("%w: no iteration to update", ErrPrecondition)
	}
	idx := len(s.Iterations) - 1
	s.Iterations[idx] = mutate(s.Iterations[idx])
	return nil
}
