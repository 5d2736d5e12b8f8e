package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinPairsEveryTeamOnce(t *testing.T) {
	g := NewRoundRobinGenerator()

	matches, err := g.GenerateBracket(context.Background(), GenerateParams{TeamIDs: []int{10, 20, 30, 40}})
	require.NoError(t, err)
	require.Len(t, matches, 6)

	expected := [][]int{
		{10, 20}, {10, 30}, {10, 40},
		{20, 30}, {20, 40},
		{30, 40},
	}
	for i, m := range matches {
		assert.Equal(t, i, m.Slot)
		assert.Equal(t, expected[i], m.Participants)
		assert.Nil(t, m.WinnerParentSlot)
		assert.Nil(t, m.LoserParentSlot)
		assert.Nil(t, m.Outcome)
		assert.False(t, m.Bye)
	}
}

func TestRoundRobinMatchCount(t *testing.T) {
	g := NewRoundRobinGenerator()

	for n := 2; n <= 8; n++ {
		teams := make([]int, n)
		for i := range teams {
			teams[i] = i + 1
		}
		matches, err := g.GenerateBracket(context.Background(), GenerateParams{TeamIDs: teams})
		require.NoError(t, err)
		assert.Len(t, matches, n*(n-1)/2, "n=%d", n)
	}
}

func TestRoundRobinRejectsTooFewTeams(t *testing.T) {
	g := NewRoundRobinGenerator()

	_, err := g.GenerateBracket(context.Background(), GenerateParams{TeamIDs: []int{1}})
	assert.Error(t, err)

	_, err = g.GenerateBracket(context.Background(), GenerateParams{TeamIDs: nil})
	assert.Error(t, err)
}
