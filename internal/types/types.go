// Package types provides shared type definitions used across december packages.
// This package exists to break import cycles between perception, articulation,
// and session. Types in this package should be foundational data structures
// with no complex dependencies.
package types

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DISPOSITION
// =============================================================================

// Disposition is the classifier's three-way routing decision for a request.
type Disposition int

const (
	// DispositionImplement obliges a single complete, self-contained
	// change-set in the response. No partial output.
	DispositionImplement Disposition = iota

	// DispositionClarify blocks implementation and asks targeted questions,
	// one per missing or ambiguous critical item.
	DispositionClarify

	// DispositionExplain answers a conceptual question without producing
	// a change-set.
	DispositionExplain
)

// String returns the canonical lowercase name of the disposition.
func (d Disposition) String() string {
	switch d {
	case DispositionImplement:
		return "implement"
	case DispositionClarify:
		return "clarify"
	case DispositionExplain:
		return "explain"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// ParseDisposition converts a string into a Disposition.
func ParseDisposition(s string) (Disposition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "implement":
		return DispositionImplement, nil
	case "clarify":
		return DispositionClarify, nil
	case "explain":
		return DispositionExplain, nil
	default:
		return 0, fmt.Errorf("unknown disposition: %q", s)
	}
}

// =============================================================================
// PRIORITY TIERS
// =============================================================================

// Priority is the fixed tier assigned to an information category. Each tier
// has a distinct resolution policy when the information is missing:
// block-and-ask, assume-and-state, or silently-default.
type Priority int

const (
	// PriorityCritical blocks implementation when missing or ambiguous.
	PriorityCritical Priority = iota

	// PriorityImportant is resolved with a stated, labeled assumption.
	PriorityImportant

	// PrioritySupplementary is resolved silently via best practice.
	PrioritySupplementary
)

// String returns the canonical lowercase name of the priority tier.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityImportant:
		return "important"
	case PrioritySupplementary:
		return "supplementary"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// =============================================================================
// REQUEST
// =============================================================================

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single prior exchange in the conversation.
type Turn struct {
	Role Role
	Text string

	// Disposition records how an assistant turn was routed. Zero-valued
	// for user turns.
	Disposition Disposition
}

// Request is a user utterance plus optional prior conversation turns.
// Immutable once received: each request produces a fresh classification.
type Request struct {
	ID        string
	Utterance string
	Turns     []Turn
	Received  time.Time
}

// LastAssistantTurn returns the most recent assistant turn, if any.
func (r Request) LastAssistantTurn() (Turn, bool) {
	for i := len(r.Turns) - 1; i >= 0; i-- {
		if r.Turns[i].Role == RoleAssistant {
			return r.Turns[i], true
		}
	}
	return Turn{}, false
}

// =============================================================================
// INFORMATION ITEMS
// =============================================================================

// ItemStatus describes whether a taxonomy category is satisfied by a request.
type ItemStatus int

const (
	// StatusPresent means the request states the information unambiguously.
	StatusPresent ItemStatus = iota

	// StatusMissing means the category applies but the request is silent.
	StatusMissing

	// StatusAmbiguous means the request mentions the category with more
	// than one plausible interpretation.
	StatusAmbiguous
)

// String returns the canonical lowercase name of the status.
func (s ItemStatus) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusMissing:
		return "missing"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// InformationItem is a fact or requirement extracted from a request, tagged
// with exactly one priority tier from the static taxonomy.
type InformationItem struct {
	// Category is the taxonomy category name (e.g. "functionality",
	// "security_privacy", "styling").
	Category string

	Priority Priority
	Status   ItemStatus

	// Evidence is the matched fragment of the utterance, empty for
	// missing items.
	Evidence string

	// Interpretations lists the plausible readings when Status is
	// ambiguous (e.g. session-based vs token-based authentication).
	Interpretations []string
}

// =============================================================================
// CLASSIFICATION OUTPUT
// =============================================================================

// ClarifyingQuestion targets one missing or ambiguous critical item.
type ClarifyingQuestion struct {
	Category  string
	Question  string
	Rationale string

	// Options is the forced-choice set offered to the user, where feasible.
	Options []string

	// DefaultOption is suggested when the user declines to choose.
	DefaultOption string
}

// Assumption is a stated default filled in for an important-tier gap, or a
// silent best-practice default for a supplementary-tier gap.
type Assumption struct {
	Category string
	Assumed  string

	// Basis names the policy the default comes from ("modern web defaults"
	// for important tiers, "best practice" for supplementary ones).
	Basis string

	// Stated controls whether the assumption is surfaced in the response.
	// Important gaps are stated; supplementary gaps are not.
	Stated bool
}

// Classification is the complete output of the request classifier.
type Classification struct {
	RequestID   string
	Disposition Disposition
	Items       []InformationItem
	Questions   []ClarifyingQuestion
	Assumptions []Assumption

	// Confidence is a heuristic score in [0,1] for the disposition choice.
	Confidence float64
}

// CriticalGaps returns the items that forced a clarify disposition.
func (c Classification) CriticalGaps() []InformationItem {
	var gaps []InformationItem
	for _, item := range c.Items {
		if item.Priority == PriorityCritical && item.Status != StatusPresent {
			gaps = append(gaps, item)
		}
	}
	return gaps
}

// StatedAssumptions returns only the assumptions surfaced to the user.
func (c Classification) StatedAssumptions() []Assumption {
	var stated []Assumption
	for _, a := range c.Assumptions {
		if a.Stated {
			stated = append(stated, a)
		}
	}
	return stated
}
