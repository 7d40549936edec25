// Package session tracks one conversation: its turns, the clarifying
// questions already asked, and the bounded clarification budget.
package session

import (
	"time"

	"github.com/google/uuid"

	"december/internal/logging"
	"december/internal/perception"
	"december/internal/types"
)

// DefaultMaxRounds is the clarification budget when none is configured.
const DefaultMaxRounds = 3

// Recorder persists classification history and round counters. Satisfied by
// store.LocalStore; nil disables persistence.
type Recorder interface {
	RecordClassification(requestID, utterance, disposition string, confidence float64) error
	Rounds(sessionID string) (int, error)
	IncrementRounds(sessionID string) (int, error)
}

// Session is one conversation with the classifier.
type Session struct {
	ID         string
	classifier *perception.Classifier
	recorder   Recorder
	maxRounds  int

	turns  []types.Turn
	asked  map[string]bool
	rounds int
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder attaches a persistence backend.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithMaxRounds overrides the clarification budget.
func WithMaxRounds(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// New creates a session over a classifier.
func New(classifier *perception.Classifier, opts ...Option) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		classifier: classifier,
		maxRounds:  DefaultMaxRounds,
		asked:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder != nil {
		if rounds, err := s.recorder.Rounds(s.ID); err == nil {
			s.rounds = rounds
		}
	}
	return s
}

// Classify classifies one utterance in the context of this session.
//
// Clarify results consume one round of the clarification budget and are
// suppressed for questions the session already asked: an ambiguity is asked
// about at most once, and once the budget is spent every critical gap is
// assumed instead of asked, forcing an implement disposition.
func (s *Session) Classify(utterance string) (types.Classification, error) {
	req := types.Request{
		ID:        uuid.NewString(),
		Utterance: utterance,
		Turns:     s.Turns(),
		Received:  time.Now(),
	}

	exhausted := s.rounds >= s.maxRounds
	classify := s.classifier.Classify
	if exhausted {
		classify = s.classifier.ClassifyExhausted
	}

	result, err := classify(req)
	if err != nil {
		return types.Classification{}, err
	}

	if result.Disposition == types.DispositionClarify {
		result.Questions = s.filterAsked(result.Questions)
		if len(result.Questions) == 0 {
			// Every open question was already asked once; re-asking is
			// not allowed, so the remaining gaps become assumptions.
			result, err = s.classifier.ClassifyExhausted(req)
			if err != nil {
				return types.Classification{}, err
			}
			// The exhausted procedure resolves every clarify terminally,
			// but a repeat question must never slip through the ledger.
			result.Questions = s.filterAsked(result.Questions)
		}
	}

	if result.Disposition == types.DispositionClarify && len(result.Questions) > 0 {
		for _, q := range result.Questions {
			s.asked[q.Category+"|"+q.Question] = true
		}
		s.rounds++
		if s.recorder != nil {
			if _, err := s.recorder.IncrementRounds(s.ID); err != nil {
				logging.SessionDebug("failed to persist round counter: %v", err)
			}
		}
		logging.Session("clarification round %d/%d for session %s", s.rounds, s.maxRounds, s.ID)
	}

	s.turns = append(s.turns,
		types.Turn{Role: types.RoleUser, Text: utterance},
		types.Turn{Role: types.RoleAssistant, Disposition: result.Disposition},
	)

	if s.recorder != nil {
		if err := s.recorder.RecordClassification(req.ID, utterance, result.Disposition.String(), result.Confidence); err != nil {
			logging.SessionDebug("failed to record classification: %v", err)
		}
	}

	return result, nil
}

func (s *Session) filterAsked(questions []types.ClarifyingQuestion) []types.ClarifyingQuestion {
	var out []types.ClarifyingQuestion
	for _, q := range questions {
		if !s.asked[q.Category+"|"+q.Question] {
			out = append(out, q)
		}
	}
	return out
}

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []types.Turn {
	out := make([]types.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Rounds returns the clarification rounds consumed.
func (s *Session) Rounds() int {
	return s.rounds
}

// Remaining returns the clarification rounds left in the budget.
func (s *Session) Remaining() int {
	if s.rounds >= s.maxRounds {
		return 0
	}
	return s.maxRounds - s.rounds
}
