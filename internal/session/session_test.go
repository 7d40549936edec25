package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"december/internal/perception"
	"december/internal/types"
)

// fakeRecorder captures persistence calls.
type fakeRecorder struct {
	classifications []string
	rounds          map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{rounds: make(map[string]int)}
}

func (f *fakeRecorder) RecordClassification(requestID, utterance, disposition string, confidence float64) error {
	f.classifications = append(f.classifications, disposition)
	return nil
}

func (f *fakeRecorder) Rounds(sessionID string) (int, error) {
	return f.rounds[sessionID], nil
}

func (f *fakeRecorder) IncrementRounds(sessionID string) (int, error) {
	f.rounds[sessionID]++
	return f.rounds[sessionID], nil
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	taxonomy, err := perception.NewTaxonomy()
	require.NoError(t, err)
	classifier := perception.NewClassifier(taxonomy, perception.Options{})
	return New(classifier, opts...)
}

func TestSessionHasUniqueID(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestClarifyConsumesRounds(t *testing.T) {
	s := newTestSession(t, WithMaxRounds(3))

	result, err := s.Classify("Add authentication to the app")
	require.NoError(t, err)
	assert.Equal(t, types.DispositionClarify, result.Disposition)
	assert.Equal(t, 1, s.Rounds())
	assert.Equal(t, 2, s.Remaining())
}

func TestImplementDoesNotConsumeRounds(t *testing.T) {
	s := newTestSession(t)

	result, err := s.Classify("Create a contact form with name, email, and message fields")
	require.NoError(t, err)
	assert.Equal(t, types.DispositionImplement, result.Disposition)
	assert.Equal(t, 0, s.Rounds())
}

func TestQuestionAskedAtMostOnce(t *testing.T) {
	s := newTestSession(t, WithMaxRounds(5))

	first, err := s.Classify("Add authentication to the app")
	require.NoError(t, err)
	require.Equal(t, types.DispositionClarify, first.Disposition)

	// The same unresolved request again: the question was already asked,
	// so the gap is assumed and the disposition is forced to implement.
	second, err := s.Classify("Add authentication to the app")
	require.NoError(t, err)
	assert.Equal(t, types.DispositionImplement, second.Disposition)
	assert.Empty(t, second.Questions)

	var found bool
	for _, a := range second.Assumptions {
		if a.Category == "security_privacy" {
			found = true
			assert.True(t, a.Stated)
		}
	}
	assert.True(t, found)
	assert.Equal(t, 1, s.Rounds())
}

func TestMixedIntentAskedAtMostOnce(t *testing.T) {
	s := newTestSession(t, WithMaxRounds(2))
	utterance := "How would you structure the dashboard, then add a login page"

	first, err := s.Classify(utterance)
	require.NoError(t, err)
	require.Equal(t, types.DispositionClarify, first.Disposition)
	require.Equal(t, 1, s.Rounds())

	// The intent question was asked; repeating the request must not ask
	// again, consume rounds, or loop on clarify.
	for i := 0; i < 3; i++ {
		again, err := s.Classify(utterance)
		require.NoError(t, err)
		assert.Equal(t, types.DispositionExplain, again.Disposition)
		assert.Empty(t, again.Questions)
		assert.Equal(t, 1, s.Rounds())
	}
}

func TestBudgetExhaustionForcesImplement(t *testing.T) {
	s := newTestSession(t, WithMaxRounds(2))

	utterances := []string{
		"Add authentication to the app",
		"Build a feedback widget and save the submissions",
	}
	for _, u := range utterances {
		result, err := s.Classify(u)
		require.NoError(t, err)
		require.Equal(t, types.DispositionClarify, result.Disposition)
	}
	assert.Equal(t, 0, s.Remaining())

	// Budget spent: a new ambiguous request no longer asks.
	result, err := s.Classify("Integrate with the backend")
	require.NoError(t, err)
	assert.Equal(t, types.DispositionImplement, result.Disposition)
	assert.Empty(t, result.Questions)
	assert.NotEmpty(t, result.StatedAssumptions())
}

func TestSessionRecordsTurns(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Classify("How does routing work?")
	require.NoError(t, err)

	turns := s.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, types.RoleUser, turns[0].Role)
	assert.Equal(t, "How does routing work?", turns[0].Text)
	assert.Equal(t, types.RoleAssistant, turns[1].Role)
	assert.Equal(t, types.DispositionExplain, turns[1].Disposition)
}

func TestSessionPersistsThroughRecorder(t *testing.T) {
	rec := newFakeRecorder()
	s := newTestSession(t, WithRecorder(rec), WithMaxRounds(3))

	_, err := s.Classify("Add authentication to the app")
	require.NoError(t, err)
	_, err = s.Classify("How does routing work?")
	require.NoError(t, err)

	assert.Equal(t, []string{"clarify", "explain"}, rec.classifications)
	assert.Equal(t, 1, rec.rounds[s.ID])
}
