package perception

import (
	"strings"

	"december/internal/types"
)

// Extract derives the information items for an utterance from the static
// taxonomy. The result is deterministic and ordered by taxonomy declaration
// order: critical categories appear only when implicated, important and
// supplementary categories always appear so their gaps can be filled with
// assumptions downstream.
func (t *Taxonomy) Extract(utterance string) []types.InformationItem {
	lower := strings.ToLower(utterance)

	var items []types.InformationItem
	for _, cc := range t.categories {
		item, applies := cc.extract(lower)
		if applies {
			items = append(items, item)
		}
	}
	return items
}

// extract matches against the lowered utterance and slices evidence from the
// same string: lowercasing can change byte length (Kelvin sign, dotted I),
// so indexes into the lowered text must never be applied to the original.
func (cc compiledCategory) extract(lower string) (types.InformationItem, bool) {
	item := types.InformationItem{
		Category: cc.def.Category,
		Priority: cc.def.Priority,
	}

	// Ambiguity triggers take precedence: a matched trigger with no
	// resolver keyword means the category is implicated but unresolved.
	for _, amb := range cc.ambiguities {
		loc := amb.pattern.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		if hasAnyResolver(lower, amb.def.Resolvers) {
			item.Status = types.StatusPresent
			item.Evidence = lower[loc[0]:loc[1]]
			return item, true
		}
		item.Status = types.StatusAmbiguous
		item.Evidence = lower[loc[0]:loc[1]]
		item.Interpretations = amb.def.Options
		return item, true
	}

	// Plain mention via pattern or synonym.
	if loc := cc.matchMention(lower); loc != nil {
		item.Status = types.StatusPresent
		item.Evidence = lower[loc[0]:loc[1]]
		return item, true
	}

	// Unmentioned: critical categories simply do not apply; lower tiers
	// surface as gaps to be filled by the assumption policy.
	if cc.def.Priority == types.PriorityCritical {
		return types.InformationItem{}, false
	}
	item.Status = types.StatusMissing
	return item, true
}

func (cc compiledCategory) matchMention(lower string) []int {
	for _, re := range cc.patterns {
		if loc := re.FindStringIndex(lower); loc != nil {
			return loc
		}
	}
	for _, syn := range cc.def.Synonyms {
		if idx := strings.Index(lower, syn); idx >= 0 {
			return []int{idx, idx + len(syn)}
		}
	}
	return nil
}

func hasAnyResolver(lower string, resolvers []string) bool {
	for _, r := range resolvers {
		if strings.Contains(lower, r) {
			return true
		}
	}
	return false
}
