package perception

import (
	"fmt"
	"regexp"
	"strings"

	"december/internal/logging"
	"december/internal/types"
)

// Exemplar is a user-confirmed phrase-to-disposition mapping learned from
// prior conversations. Exemplars are consulted before the static decision
// procedure so confirmed phrasings keep routing the same way.
type Exemplar struct {
	Phrase      string
	Disposition types.Disposition
	Confidence  float64
}

// ExemplarStore persists learned exemplars across runs.
type ExemplarStore interface {
	StoreExemplar(phrase string, disposition types.Disposition, confidence float64) error
	LoadExemplars() ([]Exemplar, error)
}

// SetStore attaches a persistence backend to the taxonomy.
func (t *Taxonomy) SetStore(s ExemplarStore) {
	t.store = s
}

// HydrateFromStore loads all persisted exemplars into memory.
func (t *Taxonomy) HydrateFromStore() error {
	if t.store == nil {
		return fmt.Errorf("no store configured")
	}
	exemplars, err := t.store.LoadExemplars()
	if err != nil {
		return fmt.Errorf("failed to load exemplars: %w", err)
	}
	t.exemplars = exemplars
	logging.PerceptionDebug("hydrated %d learned exemplars", len(exemplars))
	return nil
}

// Learn records a confirmed phrase-to-disposition mapping, persisting it when
// a store is attached.
func (t *Taxonomy) Learn(phrase string, disposition types.Disposition, confidence float64) error {
	normalized := normalizePhrase(phrase)
	if normalized == "" {
		return fmt.Errorf("cannot learn empty phrase")
	}

	// Replace an existing exemplar for the same phrase rather than
	// accumulating duplicates.
	for i, ex := range t.exemplars {
		if normalizePhrase(ex.Phrase) == normalized {
			t.exemplars[i] = Exemplar{Phrase: phrase, Disposition: disposition, Confidence: confidence}
			return t.persist(phrase, disposition, confidence)
		}
	}

	t.exemplars = append(t.exemplars, Exemplar{
		Phrase:      phrase,
		Disposition: disposition,
		Confidence:  confidence,
	})
	logging.Perception("learned exemplar: %q -> %s", phrase, disposition)
	return t.persist(phrase, disposition, confidence)
}

func (t *Taxonomy) persist(phrase string, disposition types.Disposition, confidence float64) error {
	if t.store == nil {
		return nil
	}
	return t.store.StoreExemplar(phrase, disposition, confidence)
}

// MatchExemplar returns the learned exemplar whose normalized phrase equals
// the normalized utterance, if any. Matching is exact after normalization to
// keep classification deterministic.
func (t *Taxonomy) MatchExemplar(utterance string) (Exemplar, bool) {
	normalized := normalizePhrase(utterance)
	for _, ex := range t.exemplars {
		if normalizePhrase(ex.Phrase) == normalized {
			return ex, true
		}
	}
	return Exemplar{}, false
}

// Exemplars returns a copy of the in-memory exemplar list.
func (t *Taxonomy) Exemplars() []Exemplar {
	out := make([]Exemplar, len(t.exemplars))
	copy(out, t.exemplars)
	return out
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!?")
	return whitespaceRun.ReplaceAllString(s, " ")
}
