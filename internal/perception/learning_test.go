package perception

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"december/internal/types"
)

// fakeStore records calls in memory.
type fakeStore struct {
	stored []Exemplar
	seed   []Exemplar
}

func (f *fakeStore) StoreExemplar(phrase string, disposition types.Disposition, confidence float64) error {
	f.stored = append(f.stored, Exemplar{Phrase: phrase, Disposition: disposition, Confidence: confidence})
	return nil
}

func (f *fakeStore) LoadExemplars() ([]Exemplar, error) {
	return f.seed, nil
}

func TestLearnAndMatchNormalizes(t *testing.T) {
	taxonomy := testTaxonomy(t)
	require.NoError(t, taxonomy.Learn("Deploy  the staging build.", types.DispositionImplement, 0.7))

	ex, ok := taxonomy.MatchExemplar("deploy the staging build")
	require.True(t, ok)
	assert.Equal(t, types.DispositionImplement, ex.Disposition)

	_, ok = taxonomy.MatchExemplar("deploy the production build")
	assert.False(t, ok)
}

func TestLearnReplacesDuplicate(t *testing.T) {
	taxonomy := testTaxonomy(t)
	require.NoError(t, taxonomy.Learn("ship it", types.DispositionClarify, 0.5))
	require.NoError(t, taxonomy.Learn("Ship it!", types.DispositionImplement, 0.9))

	require.Len(t, taxonomy.Exemplars(), 1)
	ex, ok := taxonomy.MatchExemplar("ship it")
	require.True(t, ok)
	assert.Equal(t, types.DispositionImplement, ex.Disposition)
}

func TestLearnRejectsEmptyPhrase(t *testing.T) {
	taxonomy := testTaxonomy(t)
	assert.Error(t, taxonomy.Learn("  ?!", types.DispositionImplement, 0.5))
}

func TestLearnPersistsThroughStore(t *testing.T) {
	taxonomy := testTaxonomy(t)
	fs := &fakeStore{}
	taxonomy.SetStore(fs)

	require.NoError(t, taxonomy.Learn("ship it", types.DispositionImplement, 0.9))
	require.Len(t, fs.stored, 1)
	assert.Equal(t, "ship it", fs.stored[0].Phrase)
}

func TestHydrateFromStore(t *testing.T) {
	taxonomy := testTaxonomy(t)
	fs := &fakeStore{seed: []Exemplar{
		{Phrase: "ship it", Disposition: types.DispositionImplement, Confidence: 0.9},
	}}
	taxonomy.SetStore(fs)
	require.NoError(t, taxonomy.HydrateFromStore())

	_, ok := taxonomy.MatchExemplar("SHIP IT")
	assert.True(t, ok)
}

func TestHydrateWithoutStoreFails(t *testing.T) {
	taxonomy := testTaxonomy(t)
	assert.Error(t, taxonomy.HydrateFromStore())
}
