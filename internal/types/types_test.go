package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispositionRoundTrip(t *testing.T) {
	for _, d := range []Disposition{DispositionImplement, DispositionClarify, DispositionExplain} {
		parsed, err := ParseDisposition(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	parsed, err := ParseDisposition("  Clarify ")
	require.NoError(t, err)
	assert.Equal(t, DispositionClarify, parsed)

	_, err = ParseDisposition("maybe")
	assert.Error(t, err)
}

func TestLastAssistantTurn(t *testing.T) {
	req := Request{Turns: []Turn{
		{Role: RoleUser, Text: "add auth"},
		{Role: RoleAssistant, Disposition: DispositionClarify},
		{Role: RoleUser, Text: "use JWT"},
	}}

	turn, ok := req.LastAssistantTurn()
	require.True(t, ok)
	assert.Equal(t, DispositionClarify, turn.Disposition)

	_, ok = Request{}.LastAssistantTurn()
	assert.False(t, ok)
}

func TestClassificationHelpers(t *testing.T) {
	c := Classification{
		Items: []InformationItem{
			{Category: "functionality", Priority: PriorityCritical, Status: StatusPresent},
			{Category: "security_privacy", Priority: PriorityCritical, Status: StatusAmbiguous},
			{Category: "styling", Priority: PriorityImportant, Status: StatusMissing},
		},
		Assumptions: []Assumption{
			{Category: "styling", Stated: true},
			{Category: "logging_analytics", Stated: false},
		},
	}

	gaps := c.CriticalGaps()
	require.Len(t, gaps, 1)
	assert.Equal(t, "security_privacy", gaps[0].Category)

	stated := c.StatedAssumptions()
	require.Len(t, stated, 1)
	assert.Equal(t, "styling", stated[0].Category)
}
