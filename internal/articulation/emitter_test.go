package articulation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"december/internal/types"
)

func implementClassification() types.Classification {
	return types.Classification{
		RequestID:   "r1",
		Disposition: types.DispositionImplement,
		Assumptions: []types.Assumption{
			{Category: "styling", Assumed: "utility-first CSS", Basis: "modern web defaults", Stated: true},
			{Category: "logging_analytics", Assumed: "no analytics", Basis: "best practice", Stated: false},
		},
	}
}

// sampleExisting resolves the fixture's rename source and delete target,
// which are pre-existing project files rather than in-block writes.
func sampleExisting() func(string) bool {
	return existing("src/Form.jsx", "src/unused.js")
}

func TestBuildImplementCarriesOneBlock(t *testing.T) {
	e := NewEmitter()
	e.Exists = sampleExisting()

	resp, err := e.Build(implementClassification(), "Proceeding.", sampleChangeSet())
	require.NoError(t, err)

	rendered := e.Render(resp)
	assert.Equal(t, 1, CountBlocks(rendered))

	// Only stated assumptions appear in the output.
	assert.Contains(t, rendered, "styling: utility-first CSS")
	assert.NotContains(t, rendered, "no analytics")
}

func TestBuildRejectsBlockOnClarifyAndExplain(t *testing.T) {
	e := NewEmitter()

	for _, d := range []types.Disposition{types.DispositionClarify, types.DispositionExplain} {
		c := types.Classification{RequestID: "r1", Disposition: d}
		_, err := e.Build(c, "prose", sampleChangeSet())
		assert.Error(t, err, "disposition %s", d)
	}
}

func TestBuildValidatesChangeSet(t *testing.T) {
	e := NewEmitter()
	bad := &ChangeSet{Ops: []FileOp{{Kind: OpDelete, Path: "ghost.js"}}}

	_, err := e.Build(implementClassification(), "Proceeding.", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid change block")

	// The same delete passes when the path pre-exists.
	e.Exists = existing("ghost.js")
	_, err = e.Build(implementClassification(), "Proceeding.", bad)
	assert.NoError(t, err)
}

func TestRenderClarifyListsQuestions(t *testing.T) {
	e := NewEmitter()
	c := types.Classification{
		RequestID:   "r1",
		Disposition: types.DispositionClarify,
		Questions: []types.ClarifyingQuestion{
			{
				Category:      "security_privacy",
				Question:      "Which authentication method should be used?",
				Options:       []string{"session-based", "token-based (JWT)"},
				DefaultOption: "session-based",
			},
		},
	}

	resp, err := e.Build(c, "A few details first.", nil)
	require.NoError(t, err)

	rendered := e.Render(resp)
	assert.Contains(t, rendered, "1. Which authentication method should be used?")
	assert.Contains(t, rendered, "- session-based")
	assert.Contains(t, rendered, "default if unspecified: session-based")
	assert.Equal(t, 0, CountBlocks(rendered))
}

func TestProcessorEnforcesOutputContract(t *testing.T) {
	e := NewEmitter()
	e.Exists = sampleExisting()
	rp := NewResponseProcessor()
	rp.Exists = sampleExisting()

	resp, err := e.Build(implementClassification(), "Proceeding.", sampleChangeSet())
	require.NoError(t, err)
	rendered := e.Render(resp)

	result, err := rp.Process(rendered, types.DispositionImplement)
	require.NoError(t, err)
	require.NotNil(t, result.Changes)
	assert.Len(t, result.Changes.Ops, 4)

	// The same text fails under a non-implement disposition.
	_, err = rp.Process(rendered, types.DispositionExplain)
	assert.Error(t, err)

	// An implement response with no block fails.
	_, err = rp.Process("All done.", types.DispositionImplement)
	assert.Error(t, err)

	// Two blocks fail.
	_, err = rp.Process(rendered+"\n"+sampleChangeSet().Render(), types.DispositionImplement)
	assert.Error(t, err)

	stats := rp.GetStats()
	assert.Equal(t, 4, stats.TotalProcessed)
	assert.Equal(t, 1, stats.ValidResponses)
	assert.Equal(t, 3, stats.ValidationFailures)
}

func TestProcessorRejectsUnresolvedPath(t *testing.T) {
	rp := NewResponseProcessor()
	raw := (&ChangeSet{Ops: []FileOp{{Kind: OpRename, Path: "missing.js", To: "new.js"}}}).Render()

	_, err := rp.Process(raw, types.DispositionImplement)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output contract")

	rp.Exists = existing("missing.js")
	rp.ResetStats()
	result, err := rp.Process(raw, types.DispositionImplement)
	require.NoError(t, err)
	assert.Len(t, result.Changes.Ops, 1)
}

func TestLintSizeLimits(t *testing.T) {
	longComponent := strings.Repeat("const line = 1\n", MaxComponentLines+1)
	longFile := strings.Repeat("const line = 1\n", MaxFileLines+1)
	shortComponent := strings.Repeat("const line = 1\n", MaxComponentLines)

	cs := &ChangeSet{Ops: []FileOp{
		{Kind: OpWrite, Path: "src/components/Big.jsx", Contents: longComponent},
		{Kind: OpWrite, Path: "src/huge.js", Contents: longFile},
		{Kind: OpWrite, Path: "src/Small.tsx", Contents: shortComponent},
		{Kind: OpWrite, Path: "src/ok.js", Contents: "let x = 1\n"},
	}}

	warnings := Lint(cs)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "src/components/Big.jsx")
	assert.Contains(t, warnings[0], "components over 50 lines")
	assert.Contains(t, warnings[1], "src/huge.js")
	assert.Contains(t, warnings[1], "files over 500 lines")
}
