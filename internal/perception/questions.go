package perception

import (
	"fmt"

	"december/internal/types"
)

// buildQuestions emits one targeted question per critical gap, in taxonomy
// declaration order, each with a rationale and (where the taxonomy defines
// one) a forced-choice option set.
func (c *Classifier) buildQuestions(gaps []types.InformationItem) []types.ClarifyingQuestion {
	questions := make([]types.ClarifyingQuestion, 0, len(gaps))
	for _, gap := range gaps {
		questions = append(questions, c.questionFor(gap))
	}
	return questions
}

func (c *Classifier) questionFor(gap types.InformationItem) types.ClarifyingQuestion {
	def, ok := c.taxonomy.Lookup(gap.Category)
	if !ok {
		return types.ClarifyingQuestion{
			Category: gap.Category,
			Question: fmt.Sprintf("What are the %s requirements?", gap.Category),
		}
	}

	// Ambiguous items carry the trigger that matched; find its definition
	// so the question names the ambiguous term and offers its options.
	if gap.Status == types.StatusAmbiguous {
		if amb, ok := ambiguityFor(def, gap); ok {
			return types.ClarifyingQuestion{
				Category:      gap.Category,
				Question:      fmt.Sprintf("%s (you mentioned %q)", amb.Question, gap.Evidence),
				Rationale:     amb.Rationale,
				Options:       amb.Options,
				DefaultOption: amb.DefaultOption,
			}
		}
	}

	return types.ClarifyingQuestion{
		Category:  gap.Category,
		Question:  fmt.Sprintf("The request implicates %s but does not specify it. What is required?", def.Category),
		Rationale: def.Rationale,
	}
}

// ambiguityFor matches a gap back to the ambiguity definition whose option
// set it carries.
func ambiguityFor(def CategoryDef, gap types.InformationItem) (AmbiguityDef, bool) {
	for _, amb := range def.Ambiguities {
		if sameOptions(amb.Options, gap.Interpretations) {
			return amb, true
		}
	}
	if len(def.Ambiguities) == 1 {
		return def.Ambiguities[0], true
	}
	return AmbiguityDef{}, false
}

func sameOptions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
