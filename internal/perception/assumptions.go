package perception

import (
	"december/internal/types"
)

// Bases name the policy an assumption is grounded in. Important-tier gaps
// are labeled and surfaced; supplementary-tier gaps are filled silently.
const (
	BasisModernWebDefaults = "modern web defaults"
	BasisBestPractice      = "best practice"
	BasisBudgetExhausted   = "clarification budget exhausted"
)

// buildAssumptions fills important and supplementary gaps from the fixed
// default policy. Important assumptions are stated in the response;
// supplementary ones are applied silently and may be offered as alternatives
// after the fact.
func (c *Classifier) buildAssumptions(items []types.InformationItem) []types.Assumption {
	var assumptions []types.Assumption
	for _, item := range items {
		if item.Status != types.StatusMissing || item.Priority == types.PriorityCritical {
			continue
		}
		def, ok := c.taxonomy.Lookup(item.Category)
		if !ok || def.Default == "" {
			continue
		}

		a := types.Assumption{
			Category: item.Category,
			Assumed:  def.Default,
		}
		switch item.Priority {
		case types.PriorityImportant:
			a.Basis = BasisModernWebDefaults
			a.Stated = true
		case types.PrioritySupplementary:
			a.Basis = BasisBestPractice
			a.Stated = false
		}
		assumptions = append(assumptions, a)
	}
	return assumptions
}

// assumeCriticalGap converts a blocking critical gap into a stated assumption
// once the clarification budget is spent. The ambiguity's default option is
// assumed where one exists; otherwise the first interpretation is taken.
func (c *Classifier) assumeCriticalGap(gap types.InformationItem) types.Assumption {
	assumed := "the most conventional interpretation"
	if def, ok := c.taxonomy.Lookup(gap.Category); ok {
		if amb, ok := ambiguityFor(def, gap); ok {
			assumed = amb.DefaultOption
			if assumed == "" && len(amb.Options) > 0 {
				assumed = amb.Options[0]
			}
		}
	}
	return types.Assumption{
		Category: gap.Category,
		Assumed:  assumed,
		Basis:    BasisBudgetExhausted,
		Stated:   true,
	}
}

// Alternatives returns the optional after-the-fact suggestions for the
// supplementary categories a classification silently defaulted.
func (c *Classifier) Alternatives(classification types.Classification) map[string][]string {
	alts := make(map[string][]string)
	for _, a := range classification.Assumptions {
		if a.Stated {
			continue
		}
		if def, ok := c.taxonomy.Lookup(a.Category); ok && len(def.Alternatives) > 0 {
			alts[a.Category] = def.Alternatives
		}
	}
	return alts
}
