// Package perception maps incoming user requests to dispositions.
// The classifier is a fixed decision procedure over the static taxonomy:
// stateless, deterministic, and referentially transparent given
// (request, taxonomy). LLMs are deliberately not involved.
package perception

import (
	"errors"
	"regexp"
	"strings"

	"december/internal/logging"
	"december/internal/types"
)

// ErrEmptyUtterance is returned when a request carries no text.
var ErrEmptyUtterance = errors.New("utterance is empty")

// ImperativePatterns detect a change request.
var ImperativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(please\s+)?(can\s+you\s+|could\s+you\s+)?(make|change|update|modify|edit|fix|add|remove|delete|create|build|implement|write|refactor|generate|set\s+up)\b`),
	regexp.MustCompile(`(?i)\bi\s+(want|need|would\s+like)\s+(you\s+)?to\s+`),
	regexp.MustCompile(`(?i)[.;,]\s*(then\s+)?(add|create|build|implement|fix|remove|delete)\b`),
	regexp.MustCompile(`(?i)\band\s+(add|create|build|implement|fix|remove|delete)\b`),
}

// ConceptualPatterns detect an explanatory question. A trailing question
// mark alone is not conceptual: "can you add a button?" is a polite
// imperative, not a request for theory.
var ConceptualPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(how|what|why|when|where|which|who)\b`),
	regexp.MustCompile(`(?i)^(explain|describe|walk\s+me\s+through|tell\s+me\s+about)\b`),
	regexp.MustCompile(`(?i)\bhow\s+(does|do|is|are|would|should)\b`),
}

var trailingQuestion = regexp.MustCompile(`\?\s*$`)

// Options tunes classifier scoring. Zero values take sensible defaults.
type Options struct {
	// MinConfidence is the floor reported for fallback classifications.
	MinConfidence float64

	// LearnedBoost is added to the confidence of learned-exemplar matches.
	LearnedBoost float64
}

func (o Options) withDefaults() Options {
	if o.MinConfidence == 0 {
		o.MinConfidence = 0.3
	}
	if o.LearnedBoost == 0 {
		o.LearnedBoost = 0.1
	}
	return o
}

// Classifier produces a Classification for each Request.
type Classifier struct {
	taxonomy *Taxonomy
	opts     Options
}

// NewClassifier creates a classifier over the given taxonomy.
func NewClassifier(taxonomy *Taxonomy, opts Options) *Classifier {
	return &Classifier{taxonomy: taxonomy, opts: opts.withDefaults()}
}

// Classify runs the decision procedure:
//
//  1. purely conceptual, no change request  -> explain
//  2. conceptual and imperative mixed       -> clarify (intent question)
//  3. any critical item missing/ambiguous   -> clarify (one question each)
//  4. otherwise                             -> implement, with stated
//     assumptions for important gaps and silent defaults for
//     supplementary gaps
func (c *Classifier) Classify(req types.Request) (types.Classification, error) {
	return c.classify(req, false)
}

// ClassifyExhausted classifies with the clarification budget spent: critical
// gaps no longer block, they are converted into stated assumptions and the
// disposition is forced to implement. Mixed-intent requests resolve to
// explain, since no assumption can settle what the user wants done and
// explaining never mutates code. Exhausted classification never clarifies.
func (c *Classifier) ClassifyExhausted(req types.Request) (types.Classification, error) {
	return c.classify(req, true)
}

func (c *Classifier) classify(req types.Request, exhausted bool) (types.Classification, error) {
	utterance := strings.TrimSpace(req.Utterance)
	if utterance == "" {
		return types.Classification{}, ErrEmptyUtterance
	}

	result := types.Classification{RequestID: req.ID}

	if match, ok := c.taxonomy.MatchExemplar(utterance); ok {
		result.Disposition = match.Disposition
		result.Confidence = clamp01(match.Confidence + c.opts.LearnedBoost)
		result.Items = c.taxonomy.Extract(utterance)
		logging.PerceptionDebug("learned exemplar matched: %q -> %s", match.Phrase, match.Disposition)
		return c.finish(result, exhausted), nil
	}

	imperative := matchesAny(utterance, ImperativePatterns)
	conceptual := matchesAny(utterance, ConceptualPatterns)
	questionForm := trailingQuestion.MatchString(utterance)

	if !imperative && (conceptual || questionForm) {
		result.Disposition = types.DispositionExplain
		result.Items = c.taxonomy.Extract(utterance)
		result.Confidence = 0.9
		if !conceptual {
			result.Confidence = 0.6
		}
		return result, nil
	}

	if imperative && conceptual {
		// Unresolved intent is treated as one more ambiguity and
		// routed to clarify.
		result.Disposition = types.DispositionClarify
		result.Items = c.taxonomy.Extract(utterance)
		result.Confidence = 0.7
		result.Questions = []types.ClarifyingQuestion{{
			Category:  intentCategory,
			Question:  "Should this be explained, or implemented as a change?",
			Rationale: "The request mixes a conceptual question with a change request, and those produce different responses.",
			Options:   []string{"explain it", "implement it"},
		}}
		return c.finish(result, exhausted), nil
	}

	result.Items = c.taxonomy.Extract(utterance)

	if !imperative {
		// Neither a question nor a change request. Unresolved critical
		// mentions still warrant questions; otherwise explain is the
		// safe low-confidence fallback.
		if len(criticalGaps(result.Items)) == 0 {
			result.Disposition = types.DispositionExplain
			result.Confidence = c.opts.MinConfidence
			return result, nil
		}
	}

	if gaps := criticalGaps(result.Items); len(gaps) > 0 {
		result.Disposition = types.DispositionClarify
		result.Questions = c.buildQuestions(gaps)
		result.Confidence = 0.85
		return c.finish(result, exhausted), nil
	}

	result.Disposition = types.DispositionImplement
	result.Assumptions = c.buildAssumptions(result.Items)
	result.Confidence = implementConfidence(result.Items)
	return result, nil
}

// intentCategory marks the question asked for mixed conceptual+imperative
// requests. It is not a taxonomy category and has no assumable default.
const intentCategory = "intent"

// finish applies the exhausted-budget conversion to a clarify result.
func (c *Classifier) finish(result types.Classification, exhausted bool) types.Classification {
	if !exhausted || result.Disposition != types.DispositionClarify {
		return result
	}

	// Unanswered intent has no default to assume: whether to change code
	// at all is not a gap that can be filled. Explain is the terminal
	// non-mutating resolution.
	if hasIntentQuestion(result.Questions) {
		result.Disposition = types.DispositionExplain
		result.Questions = nil
		result.Confidence = c.opts.MinConfidence
		logging.Perception("clarification budget exhausted on mixed intent, falling back to explain")
		return result
	}

	result.Disposition = types.DispositionImplement
	for _, gap := range criticalGaps(result.Items) {
		result.Assumptions = append(result.Assumptions, c.assumeCriticalGap(gap))
	}
	result.Assumptions = append(result.Assumptions, c.buildAssumptions(result.Items)...)
	result.Questions = nil
	result.Confidence = c.opts.MinConfidence
	logging.Perception("clarification budget exhausted, forcing implement with %d assumptions", len(result.Assumptions))
	return result
}

func hasIntentQuestion(questions []types.ClarifyingQuestion) bool {
	for _, q := range questions {
		if q.Category == intentCategory {
			return true
		}
	}
	return false
}

func criticalGaps(items []types.InformationItem) []types.InformationItem {
	var gaps []types.InformationItem
	for _, item := range items {
		if item.Priority == types.PriorityCritical && item.Status != types.StatusPresent {
			gaps = append(gaps, item)
		}
	}
	return gaps
}

func implementConfidence(items []types.InformationItem) float64 {
	for _, item := range items {
		if item.Category == "functionality" && item.Status == types.StatusPresent {
			return 0.95
		}
	}
	return 0.8
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
