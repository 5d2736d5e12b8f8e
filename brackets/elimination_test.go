package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateElimination(t *testing.T, n int) []*BracketMatch {
	t.Helper()
	teams := make([]int, n)
	for i := range teams {
		teams[i] = (i + 1) * 10
	}
	matches, err := NewEliminationGenerator().GenerateBracket(context.Background(), GenerateParams{TeamIDs: teams})
	require.NoError(t, err)
	return matches
}

func TestEliminationArenaShape(t *testing.T) {
	cases := []struct {
		teams   int
		matches int
		byes    int
	}{
		{2, 1, 0},
		{3, 3, 1},
		{4, 3, 0},
		{5, 7, 3},
		{6, 7, 2},
		{7, 7, 1},
		{8, 7, 0},
		{9, 15, 7},
	}

	for _, tc := range cases {
		matches := generateElimination(t, tc.teams)
		assert.Len(t, matches, tc.matches, "teams=%d", tc.teams)

		roots, byes := 0, 0
		for i, m := range matches {
			assert.Equal(t, i, m.Slot, "teams=%d", tc.teams)
			if m.WinnerParentSlot == nil {
				roots++
			} else {
				// Parents precede their children in the arena.
				assert.Less(t, *m.WinnerParentSlot, m.Slot, "teams=%d slot=%d", tc.teams, m.Slot)
			}
			if m.Bye {
				byes++
			}
		}
		assert.Equal(t, 1, roots, "teams=%d", tc.teams)
		assert.Equal(t, tc.byes, byes, "teams=%d", tc.teams)
	}
}

func TestEliminationParentLinkage(t *testing.T) {
	matches := generateElimination(t, 8)

	// Heap layout: winner of slot i feeds slot (i-1)/2.
	for _, m := range matches[1:] {
		require.NotNil(t, m.WinnerParentSlot, "slot=%d", m.Slot)
		assert.Equal(t, (m.Slot-1)/2, *m.WinnerParentSlot, "slot=%d", m.Slot)
	}

	// First round pairs team j against team j+4.
	assert.Equal(t, []int{10, 50}, matches[3].Participants)
	assert.Equal(t, []int{20, 60}, matches[4].Participants)
	assert.Equal(t, []int{30, 70}, matches[5].Participants)
	assert.Equal(t, []int{40, 80}, matches[6].Participants)
}

func TestEliminationByeAdvancesAtGeneration(t *testing.T) {
	matches := generateElimination(t, 3)
	require.Len(t, matches, 3)

	final := matches[0]
	played := matches[1]
	bye := matches[2]

	assert.Equal(t, []int{10, 30}, played.Participants)

	assert.True(t, bye.Bye)
	assert.Equal(t, []int{20}, bye.Participants)
	require.NotNil(t, bye.Outcome)
	require.NotNil(t, bye.Outcome.WinnerTeamID)
	assert.Equal(t, 20, *bye.Outcome.WinnerTeamID)

	// The lone team is already waiting in the final.
	assert.Equal(t, []int{20}, final.Participants)
	assert.Nil(t, final.WinnerParentSlot)
}

func TestEliminationTwoTeamsIsJustTheFinal(t *testing.T) {
	matches := generateElimination(t, 2)
	require.Len(t, matches, 1)

	final := matches[0]
	assert.Equal(t, []int{10, 20}, final.Participants)
	assert.Nil(t, final.WinnerParentSlot)
	assert.Nil(t, final.LoserParentSlot)
	assert.False(t, final.Bye)
}

func TestEliminationRejectsTooFewTeams(t *testing.T) {
	_, err := NewEliminationGenerator().GenerateBracket(context.Background(), GenerateParams{TeamIDs: []int{1}})
	assert.Error(t, err)
}
